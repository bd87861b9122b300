package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/lending/internal/audit"
)

const (
	RequestIDHeader     = "X-Request-ID"
	contextKeyRequestID = "request_id"
	maxRequestIDLength  = 64
)

// RequestIDMiddleware tags every request with a correlation id. A client-supplied
// X-Request-ID is kept when it is short enough; otherwise a UUID is generated. The id
// is echoed in the response and attached to audit events.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(contextKeyRequestID, id)
		c.Request = c.Request.WithContext(audit.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the correlation id of the request.
func GetRequestID(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}
