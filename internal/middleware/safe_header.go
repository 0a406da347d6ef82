package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const adminPagePolicy = "default-src 'self'; img-src 'self' data: blob:; frame-ancestors 'self'"

// SafeHeader adds security-related headers to each response. HSTS is sent only when
// the deployment serves cookies over https.
func SafeHeader(httpsOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		// Only API answers are marked no-store.
		if strings.HasPrefix(c.Request.URL.Path, "/admin") {
			h.Set("Content-Security-Policy", adminPagePolicy)
		} else {
			h.Set("Cache-Control", "no-store")
		}
		if httpsOnly {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		c.Next()
	}
}
