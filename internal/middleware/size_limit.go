package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/utilities"
)

// multipartOverhead covers boundaries and part headers around the file itself.
const multipartOverhead = int64(8 * 1024)

// SizeLimit rejects bodies that cannot fit a file of maxFileBytes. A declared Content-Length
// over the limit is answered with 413 up front; an undeclared one is cut off by http.MaxBytesReader,
// which surfaces as *http.MaxBytesError when the handler reads the form.
func SizeLimit(maxFileBytes int64) gin.HandlerFunc {
	limit := maxFileBytes + multipartOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, utilities.Envelope{
				Success: false,
				Error:   "File size exceeds the upload limit",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
