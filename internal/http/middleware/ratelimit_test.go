package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func limitedRouter(cfg RateLimitConfig, clock *fakeClock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rateLimitWithClock(cfg, clock.now))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitAllowsBurstThenRejects(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	r := limitedRouter(RateLimitConfig{Scope: "chat", Max: 3, Window: time.Minute, Message: "chậm lại"}, clock)

	for i := 0; i < 3; i++ {
		if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got=%d want=200", i, rec.Code)
		}
	}
	rec := hit(r, "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over limit: got=%d want=429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "chậm lại") {
		t.Fatalf("missing message: %s", rec.Body.String())
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}

	if rec := hit(r, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other client: got=%d want=200", rec.Code)
	}

	clock.t = clock.t.Add(20 * time.Second)
	if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("after refill: got=%d want=200", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	r := limitedRouter(RateLimitConfig{Max: 0}, clock)
	for i := 0; i < 50; i++ {
		if rec := hit(r, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: got=%d", i, rec.Code)
		}
	}
}
