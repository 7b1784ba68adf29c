package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIError is the error envelope returned by every endpoint
type APIError struct {
	Error      bool     `json:"error"`
	Message    string   `json:"message"`
	StatusCode int      `json:"status_code"`
	Timestamp  string   `json:"timestamp"`
	Path       string   `json:"path"`
	Details    []string `json:"details,omitempty"`
}

// AbortWithError sends the envelope and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, newAPIError(c, statusCode, message))
}

func newAPIError(c *gin.Context, statusCode int, message string) APIError {
	return APIError{
		Error:      true,
		Message:    message,
		StatusCode: statusCode,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       c.Request.URL.Path,
	}
}

// BadRequestError sends a 400 error response
func BadRequestError(c *gin.Context, message string) {
	AbortWithError(c, http.StatusBadRequest, message)
}

// InternalServerError sends a 500 error response
func InternalServerError(c *gin.Context, message string) {
	AbortWithError(c, http.StatusInternalServerError, message)
}

// NotFoundError sends a 404 error response
func NotFoundError(c *gin.Context, message string) {
	AbortWithError(c, http.StatusNotFound, message)
}

// UnauthorizedError sends a 401 error response
func UnauthorizedError(c *gin.Context, message string) {
	AbortWithError(c, http.StatusUnauthorized, message)
}

// ValidationError sends a 422 with the individual problems listed
func ValidationError(c *gin.Context, details []string) {
	body := newAPIError(c, http.StatusUnprocessableEntity, "Request validation failed")
	body.Details = details
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, body)
}
