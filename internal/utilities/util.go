// Package utilities contain utility code that use across the package
package utilities

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// Context keys shared between middleware and handlers.
const (
	SessionKey = "session"
	LoggerKey  = "logger"
)

// Envelope is the uniform API response body.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse type for swagger docs
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondData writes {success:true, data}.
func RespondData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// RespondList writes {success:true, data, count}.
func RespondList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: &count})
}

// RespondMessage writes {success:true, message}.
func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

// RespondError writes {success:false, error} with the status derived from err.
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		Logger(c).Error("request failed", slog.String("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: err.Error()})
}

// Logger returns the request scoped logger, or the default logger outside a request.
func Logger(c *gin.Context) *slog.Logger {
	if c != nil {
		if v, ok := c.Get(LoggerKey); ok {
			if l, ok := v.(*slog.Logger); ok {
				return l
			}
		}
	}
	return slog.Default()
}

// ExtractSession returns the identity the request gate stored on the context.
func ExtractSession(c *gin.Context) (model.Session, error) {
	s, _ := c.Get(SessionKey)
	if s == nil {
		return model.Session{}, errors.New("Session information not provided")
	}

	session, ok := s.(model.Session)
	if !ok {
		return model.Session{}, errors.New("Failed to assert type")
	}
	return session, nil
}
