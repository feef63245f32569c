package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestAllowRequestPerMinute(t *testing.T) {
	rl := NewRateLimiter(Limits{PerMinute: 2}, true)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.AllowRequest("a") || !rl.AllowRequest("a") {
		t.Fatal("expected first two requests to pass")
	}
	if rl.AllowRequest("a") {
		t.Error("expected third request within a minute to be rejected")
	}
	if !rl.AllowRequest("b") {
		t.Error("expected a different client to have its own window")
	}

	now = now.Add(61 * time.Second)
	if !rl.AllowRequest("a") {
		t.Error("expected window to slide after a minute")
	}
}

func TestAllowRequestPerHour(t *testing.T) {
	rl := NewRateLimiter(Limits{PerMinute: 10, PerHour: 3}, true)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.AllowRequest("a") {
			t.Fatalf("request %d should pass", i)
		}
		now = now.Add(2 * time.Minute)
	}
	if rl.AllowRequest("a") {
		t.Error("expected hourly limit to apply")
	}
}

func TestDisabledAllowsEverything(t *testing.T) {
	rl := NewRateLimiter(Limits{PerMinute: 1}, false)
	for i := 0; i < 5; i++ {
		if !rl.AllowRequest("a") {
			t.Fatal("disabled limiter rejected a request")
		}
	}
	if rl.GetStats().Enabled {
		t.Error("expected stats to report disabled")
	}
}

func TestStatsAndReset(t *testing.T) {
	rl := NewRateLimiter(Limits{PerMinute: 5}, true)
	rl.AllowRequest("a")
	rl.AllowRequest("b")

	if got := rl.GetStats().TrackedClients; got != 2 {
		t.Errorf("expected 2 tracked clients, got %d", got)
	}
	rl.Reset()
	if got := rl.GetStats().TrackedClients; got != 0 {
		t.Errorf("expected 0 tracked clients after reset, got %d", got)
	}
}

func TestIdleClientsAreDropped(t *testing.T) {
	rl := NewRateLimiter(Limits{PerMinute: 5}, true)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		rl.AllowRequest(ip)
	}

	now = now.Add(25 * time.Hour)
	rl.AllowRequest("10.0.0.9")

	rl.mu.Lock()
	tracked := len(rl.clients)
	_, kept := rl.clients["10.0.0.9"]
	rl.mu.Unlock()
	if tracked != 1 || !kept {
		t.Errorf("expected only the active client to be tracked, got %d", tracked)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(Limits{PerMinute: 1}, true)

	r := gin.New()
	r.GET("/ping", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}
}
