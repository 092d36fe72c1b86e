package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestParseCustomRate(t *testing.T) {
	r, err := ParseCustomRate("10-2m")
	if err != nil || r.Limit != 10 || r.Period != 2*time.Minute {
		t.Fatalf("ParseCustomRate = %+v, %v", r, err)
	}
	for _, bad := range []string{"", "10", "x-1m", "10-1d", "10-m", "0-1m"} {
		if _, err := ParseCustomRate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestRateLimiterPerClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Visitor(false))
	r.POST("/submit", NewRateLimiter("2-1m", "test", nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	post := func(ip, vid string) int {
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.RemoteAddr = ip + ":40000"
		if vid != "" {
			req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: vid})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	a := "6f1c1f0e-4b7a-4a53-9a55-1d1d0f8f3a01"
	b := "6f1c1f0e-4b7a-4a53-9a55-1d1d0f8f3a02"
	if post("192.0.2.10", a) != http.StatusNoContent || post("192.0.2.10", a) != http.StatusNoContent {
		t.Fatalf("first two requests should pass")
	}
	if code := post("192.0.2.10", b); code != http.StatusTooManyRequests {
		t.Fatalf("a new visitor cookie must not reset the limit, got %d", code)
	}
	if post("192.0.2.11", a) != http.StatusNoContent {
		t.Fatalf("limits are per client ip")
	}
}

func TestRateLimiterWithoutCookies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Visitor(false))
	r.POST("/login", NewRateLimiter("2-1m", "auth", nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	limited := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "198.51.100.7:51000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 8 {
		t.Fatalf("expected 8 of 10 cookieless requests limited, got %d", limited)
	}
}
