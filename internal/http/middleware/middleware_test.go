package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if seen != "req-123" || rec.Header().Get(headerRequestID) != "req-123" {
		t.Fatalf("request id not propagated: ctx=%q header=%q", seen, rec.Header().Get(headerRequestID))
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("missing trace id")
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, strings.Repeat("a", maxIDLength+1))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if len(seen) != 36 {
		t.Fatalf("oversized id should be replaced with a uuid, got %q", seen)
	}
}

func TestRecoverWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recover(logger.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), `"error":"Internal server error"`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("short")))
	if rec.Code != http.StatusOK {
		t.Fatalf("small body rejected: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("much too long")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("large body accepted: %d", rec.Code)
	}
}

func TestMetricsAndRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics("test")
	r := gin.New()
	r.Use(Metrics(m), RequestLogger(logger.NewNop()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if strings.HasSuffix(f.GetName(), "http_requests_total") {
			found = true
		}
	}
	if !found {
		t.Fatalf("http request counter not registered")
	}

	// A nil collector must be a pass-through.
	r2 := gin.New()
	r2.Use(Metrics(nil))
	r2.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	rec = httptest.NewRecorder()
	r2.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rec.Code)
	}
}
