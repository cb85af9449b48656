package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs incoming requests and their responses
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		}

		if userID := GetUserID(c); userID != "" {
			attrs = append(attrs, "user_id", userID)
		}
		if reportID := c.Param("reportId"); reportID != "" {
			attrs = append(attrs, "report_id", reportID)
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}
		if size := c.Writer.Size(); size > 0 {
			attrs = append(attrs, "bytes", size)
		}

		switch {
		case status >= 500:
			slog.Error("request completed", attrs...)
		case status >= 400:
			slog.Warn("request completed", attrs...)
		default:
			slog.Info("request completed", attrs...)
		}
	}
}
