// Package response defines the JSON envelope every API endpoint replies
// with, success or failure.
package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the reply shape. RequestID carries the id the request-id
// middleware assigned, so a reply can be matched to its log lines.
type Envelope[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

// OK writes a success envelope.
func OK[T any](c *gin.Context, status int, data T, message string, meta any) {
	c.JSON(status, Envelope[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	})
}

// Fail writes an error envelope.
func Fail(c *gin.Context, status int, message string, details any) {
	c.JSON(status, failEnvelope(c, status, message, details))
}

// Abort writes an error envelope and stops the handler chain; middleware
// rejections use this so later handlers never run.
func Abort(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, failEnvelope(c, status, message, details))
}

func failEnvelope(c *gin.Context, status int, message string, details any) Envelope[any] {
	return Envelope[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: c.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     details,
	}
}
