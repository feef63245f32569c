package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limits are sliding-window request caps. A zero limit is unlimited.
type Limits struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

// window tracks one client's recent requests
type window struct {
	minute []time.Time
	hour   []time.Time
	day    []time.Time
}

// RateLimiter enforces Limits per client key (the caller's IP for the
// public inquiry and assistant routes)
type RateLimiter struct {
	limits  Limits
	enabled bool

	clients   map[string]*window
	now       func() time.Time
	lastSweep time.Time
	mu        sync.Mutex
}

const sweepInterval = time.Hour

func NewRateLimiter(limits Limits, enabled bool) *RateLimiter {
	return &RateLimiter{
		limits:  limits,
		enabled: enabled,
		clients: make(map[string]*window),
		now:     time.Now,
	}
}

// AllowRequest records a request for key and reports whether it is within
// the limits. Rejected requests are not recorded.
func (rl *RateLimiter) AllowRequest(key string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweepLocked(now)
	}
	w := rl.clients[key]
	if w == nil {
		w = &window{}
		rl.clients[key] = w
	}
	w.cleanup(now)

	if exceeded(len(w.minute), rl.limits.PerMinute) ||
		exceeded(len(w.hour), rl.limits.PerHour) ||
		exceeded(len(w.day), rl.limits.PerDay) {
		return false
	}

	w.minute = append(w.minute, now)
	w.hour = append(w.hour, now)
	w.day = append(w.day, now)
	return true
}

// sweepLocked drops clients with nothing left in their day window
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for key, w := range rl.clients {
		w.cleanup(now)
		if len(w.day) == 0 {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

func exceeded(count, limit int) bool {
	return limit > 0 && count >= limit
}

func (w *window) cleanup(now time.Time) {
	w.minute = filterTimes(w.minute, now.Add(-time.Minute))
	w.hour = filterTimes(w.hour, now.Add(-time.Hour))
	w.day = filterTimes(w.day, now.Add(-24*time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	result := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled        bool `json:"enabled"`
	TrackedClients int  `json:"tracked_clients"`
	LimitPerMinute int  `json:"limit_per_minute"`
	LimitPerHour   int  `json:"limit_per_hour"`
	LimitPerDay    int  `json:"limit_per_day"`
}

func (rl *RateLimiter) GetStats() Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweepLocked(rl.now())

	return Stats{
		Enabled:        true,
		TrackedClients: len(rl.clients),
		LimitPerMinute: rl.limits.PerMinute,
		LimitPerHour:   rl.limits.PerHour,
		LimitPerDay:    rl.limits.PerDay,
	}
}

// Reset clears all tracked requests
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.clients = make(map[string]*window)
}

// Middleware rejects over-limit requests with 429, keyed by client IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.AllowRequest(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
