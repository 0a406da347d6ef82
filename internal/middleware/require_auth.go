// Package middleware contain utilities middleware code
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/auth"
	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

// GateConfig selects how the gate answers a rejected request.
type GateConfig struct {
	// LoginPath is reachable without a token. An authenticated visit is sent to HomePath.
	LoginPath string
	HomePath  string
	// API answers 401 JSON instead of redirecting to LoginPath.
	API bool
}

// RequestGate verifies the authToken cookie before any protected handler runs.
// Every verification failure is treated the same, whatever its cause.
func RequestGate(tokens auth.TokenService, cfg GateConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		onLoginPage := cfg.LoginPath != "" && ctx.Request.URL.Path == cfg.LoginPath

		token, _ := ctx.Cookie(auth.CookieName)
		claims, err := tokens.Verify(ctx.Request.Context(), token)
		if err == nil {
			if onLoginPage {
				ctx.Redirect(http.StatusFound, cfg.HomePath)
				ctx.Abort()
				return
			}
			ctx.Set(utilities.SessionKey, claims.Session())
			ctx.Next()
			return
		}

		if onLoginPage {
			ctx.Next()
			return
		}

		level := slog.LevelWarn
		if token == "" {
			level = slog.LevelDebug
		}
		auth.LogAuthAttempt(utilities.Logger(ctx), level, "Gate", "Fail", "", err.Error())

		if cfg.API {
			utilities.RespondError(ctx, utilities.AuthFailure("Unauthorized"))
			return
		}
		ctx.Redirect(http.StatusFound, cfg.LoginPath)
		ctx.Abort()
	}
}
