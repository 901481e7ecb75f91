// Package requestid tags every request with a correlation ID so an access
// log line can be matched with the warnings a long-running export download
// emits mid-stream.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation ID on both request and response.
const Header = "X-Request-ID"

const contextKey = "request_id"

// Middleware reuses the caller's X-Request-ID when present, otherwise mints
// a UUID, and echoes the ID on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)

		c.Next()
	}
}

// Value returns the request's correlation ID, or "" outside the middleware.
func Value(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
