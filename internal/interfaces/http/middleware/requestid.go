package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/harborline/internal/shared/id"
	"github.com/orris-inc/harborline/internal/shared/utils"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = utils.RequestIDKey
)

const maxRequestIDLength = 64

// RequestID tags each request with the caller's X-Request-ID, or a generated
// one, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			generated, err := id.NewRequestID()
			if err == nil {
				requestID = generated
			}
		}

		if requestID != "" {
			c.Set(RequestIDKey, requestID)
			c.Header(RequestIDHeader, requestID)
		}
		c.Next()
	}
}
