package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery())
	router.POST("/api/certificates/:reportId/export", func(c *gin.Context) {
		panic("renderer exploded")
	})
	router.GET("/api/certificates/:reportId/draft", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"reportId": c.Param("reportId")})
	})

	t.Run("panic recovery", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/certificates/r1/export", nil)
		req.Header.Set("X-Request-ID", "req-42")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("Expected status 500, got %d", w.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body["error"] != "Internal server error" {
			t.Errorf("Unexpected error message %q", body["error"])
		}
		if body["request_id"] != "req-42" {
			t.Errorf("Expected request_id req-42, got %q", body["request_id"])
		}
	})

	t.Run("normal request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/certificates/r1/draft", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}

func TestRecoveryLogsReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery())
	router.POST("/api/certificates/:reportId/export", func(c *gin.Context) {
		panic("renderer exploded")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/certificates/r-9/export", nil)
	req.Header.Set("X-Request-ID", "req-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"panic recovered", "report_id=r-9", "request_id=req-7"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got %s", want, out)
		}
	}
}

func TestRecoveryAfterPartialWrite(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Recovery())
	router.GET("/api/certificates/:reportId/download", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.4"))
		panic("stream broke")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/certificates/r1/download", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected the streamed status to stand, got %d", w.Code)
	}
	if w.Body.String() != "%PDF-1.4" {
		t.Errorf("Expected no JSON appended to the document, got %q", w.Body.String())
	}
}
