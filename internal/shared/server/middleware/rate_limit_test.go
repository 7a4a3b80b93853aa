package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitGroupsAreIndependent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	groupFor := func(c *gin.Context) string {
		if c.Request.Method == http.MethodPost && c.FullPath() == "/api/resume/analyze" {
			return "ANALYZE"
		}
		return ""
	}

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: groupFor,
		Limiter:  limiter,
		Rules: map[string]RateLimitRule{
			"ANALYZE": {Rate: 1, Burst: 2},
		},
	}))
	r.POST("/api/resume/analyze", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	r.GET("/api/resume/reports", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/resume/reports", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("unlimited request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/resume/analyze", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("analyze request %d expected 201, got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/resume/analyze", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("analyze request 3 expected 429, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: "CHAT",
		Limiter:      limiter,
		Rules: map[string]RateLimitRule{
			"CHAT": {Rate: 1, Burst: 1},
		},
	}))
	r.POST("/api/chat", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	if resp1.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.Code)
	}

	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if resp2.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp2.Header().Get("Retry-After"))
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" {
		t.Fatalf("expected code rate_limited, got %q", payload.Error.Code)
	}
	if _, ok := payload.Error.Details["retryAfterMs"]; !ok {
		t.Fatalf("expected retryAfterMs in details")
	}
}

func TestPerMinute(t *testing.T) {
	if rule := PerMinute(0); rule.Rate != 0 || rule.Burst != 0 {
		t.Fatalf("expected disabled rule, got %+v", rule)
	}
	rule := PerMinute(30)
	if rule.Burst != 30 || rule.Rate != 0.5 {
		t.Fatalf("unexpected rule: %+v", rule)
	}
}

func TestRateLimitRemainingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: "ANALYZE",
		Limiter:      NewRateLimiter(func() time.Time { return now }),
		Rules:        map[string]RateLimitRule{"ANALYZE": PerMinute(3)},
	}))
	r.POST("/api/resume/analyze", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for _, want := range []string{"2", "1", "0"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/resume/analyze", nil))
		if resp.Header().Get("X-RateLimit-Limit") != "3" {
			t.Fatalf("expected limit header 3, got %q", resp.Header().Get("X-RateLimit-Limit"))
		}
		if got := resp.Header().Get("X-RateLimit-Remaining"); got != want {
			t.Fatalf("expected remaining %s, got %s", want, got)
		}
	}
}

func TestRateLimiterRefillsAndSweeps(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	if d := l.Allow("a", rule); !d.Allowed {
		t.Fatalf("first call should pass")
	}
	d := l.Allow("a", rule)
	if d.Allowed || d.RetryAfter != time.Second {
		t.Fatalf("expected denial with 1s retry, got %+v", d)
	}

	now = now.Add(time.Second)
	if d := l.Allow("a", rule); !d.Allowed {
		t.Fatalf("bucket should refill after a second")
	}

	now = now.Add(time.Hour)
	for i := 0; i < sweepEvery; i++ {
		l.Allow("b", rule)
		now = now.Add(time.Second)
	}
	if l.Len() != 1 {
		t.Fatalf("expected idle bucket to be swept, have %d", l.Len())
	}
}

func TestRateLimiterNilAllows(t *testing.T) {
	var l *RateLimiter
	if d := l.Allow("k", PerMinute(1)); !d.Allowed {
		t.Fatalf("nil limiter should allow")
	}
}
