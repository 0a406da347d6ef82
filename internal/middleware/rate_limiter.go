package middleware

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

const defaultRequestsPerSecond = 5

func keyFunc(c *gin.Context) string {
	return "ip: " + c.ClientIP()
}

func errorHandler(c *gin.Context, _ ratelimit.Info) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, utilities.Envelope{
		Success: false,
		Error:   "Too many requests. Please try again later.",
	})
}

// RateLimiterMiddleware limits each client ip to reqPerSec requests per second.
// Zero falls back to the default of 5.
func RateLimiterMiddleware(reqPerSec uint) gin.HandlerFunc {
	if reqPerSec == 0 {
		reqPerSec = defaultRequestsPerSecond
	}

	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Second,
		Limit: reqPerSec,
	})

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc:      keyFunc,
		ErrorHandler: errorHandler,
	})
}
