package middleware

import (
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// RequestID middleware tags each request with an ID carried into logs, error
// bodies and the X-Request-ID response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Reuse the caller's ID only when it is safe to echo into logs
		requestID := c.GetHeader("X-Request-ID")
		if !validRequestID(requestID) {
			requestID = uuid.New().String()
		}

		// Set request ID in response header
		c.Header("X-Request-ID", requestID)

		// Store in gin context
		c.Set("request_id", requestID)

		// Add to request context for logger
		c.Request = c.Request.WithContext(logger.With(c.Request.Context(), logger.RequestIDKey, requestID))

		c.Next()
	}
}

// validRequestID accepts short IDs made of letters, digits and - _ . :
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return false
		}
	}
	return true
}

// GetRequestID gets the request ID from gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
