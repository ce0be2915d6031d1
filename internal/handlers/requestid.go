package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

const contextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an id, honoring one supplied
// by the caller, and echoes it in the response header.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the id set by RequestIDMiddleware, or "-" if absent.
func RequestID(c *gin.Context) string {
	v, ok := c.Get(contextKeyRequestID)
	if !ok {
		return "-"
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "-"
	}
	return id
}
