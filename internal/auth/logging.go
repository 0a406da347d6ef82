package auth

import (
	"context"
	"log/slog"
)

// LogAuthAttempt records an authentication event.
// authType: Local|Gate|Logout, status: Success|Fail, identifier: userID when known.
func LogAuthAttempt(logger *slog.Logger, level slog.Level, authType, status, identifier, message string) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("authType", authType),
		slog.String("status", status),
	}
	if identifier != "" {
		attrs = append(attrs, slog.String("identifier", identifier))
	}
	if message != "" {
		attrs = append(attrs, slog.String("detail", message))
	}
	logger.LogAttrs(context.Background(), level, "auth attempt", attrs...)
}
