package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestIDEchoesCallerID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "caller-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "caller-id" {
		t.Fatalf("expected caller ID in context, got %q", seen)
	}
	if got := w.Header().Get("X-Request-Id"); got != "caller-id" {
		t.Fatalf("expected caller ID echoed, got %q", got)
	}
}

func TestRequestIDMintsFreshID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	first := w.Header().Get("X-Request-Id")
	if first == "" {
		t.Fatalf("expected a generated request ID")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if second := w.Header().Get("X-Request-Id"); second == first {
		t.Fatalf("request IDs must be unique per request")
	}
}
