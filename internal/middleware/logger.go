package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

const (
	correlationIDKey    = "correlationID"
	correlationIDHeader = "X-Correlation-ID"
)

// CorrelationID makes sure every request carries an X-Correlation-ID, echoed on the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(correlationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(correlationIDKey, id)
		c.Header(correlationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the id set by CorrelationID.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

// SlogLogger stores a request scoped logger on the context and logs one line per request.
func SlogLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		requestLogger := logger.With(
			slog.String("correlation_id", GetCorrelationID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
		)
		c.Set(utilities.LoggerKey, requestLogger)

		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		requestLogger.Log(c.Request.Context(), level, "request completed",
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
