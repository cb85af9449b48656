package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Recovery middleware recovers from panics and logs the error
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// Get request ID for tracing
				requestID := GetRequestID(c)

				// Log the panic with stack trace; request and user IDs come from the context
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"report_id", c.Param("reportId"),
					"stack", string(debug.Stack()),
				)

				// A document download may already be streaming; a JSON body
				// would corrupt it
				if c.Writer.Written() {
					c.Abort()
					return
				}

				// Return 500 error
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": requestID,
				})
			}
		}()

		c.Next()
	}
}
