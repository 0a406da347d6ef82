package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

// CheckRole will protect endpoint from admin identities that do not carry one of roles.
// It must run after RequestGate.
func CheckRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, err := utilities.ExtractSession(ctx)
		if err != nil {
			utilities.RespondError(ctx, utilities.AuthFailure("Unauthorized"))
			return
		}

		if !slices.Contains(roles, session.Role) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, utilities.Envelope{
				Success: false,
				Error:   "User doesn't have permission to access",
			})
			return
		}
		ctx.Next()
	}
}
