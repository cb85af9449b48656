package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS allows the certificate editor to call the API from another origin and
// read the export headers.
func CORS() gin.HandlerFunc {
	exposed := strings.Join([]string{
		"X-Request-ID",
		"Content-Disposition",
		HeaderCertificateURL,
		HeaderStoragePath,
		HeaderExportWarnings,
	}, ", ")

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", exposed)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Response headers set by a certificate export.
const (
	HeaderCertificateURL = "X-Certificate-URL"
	HeaderStoragePath    = "X-Storage-Path"
	HeaderExportWarnings = "X-Export-Warnings"
)

// NoStore marks API responses as uncacheable. Certificates carry client
// details and must not sit in shared caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}
