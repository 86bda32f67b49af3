package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/questionnaire/internal/response"
)

// RateLimiter allows a fixed number of requests per client IP in each
// period. A limit of zero disables it.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	onLimit gin.HandlerFunc
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter creates a RateLimiter (e.g., 10 requests per minute).
// Refusals answer with the JSON error envelope unless OnLimit replaces it.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		onLimit: func(c *gin.Context) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
		},
	}
}

// OnLimit replaces the handler run for refused requests. It must abort.
func (rl *RateLimiter) OnLimit(h gin.HandlerFunc) *RateLimiter {
	rl.onLimit = h
	return rl
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			rl.onLimit(c)
			return
		}
		c.Next()
	}
}

// Allow records one request from key and reports whether it is within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.clients[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= rl.limit {
		return false
	}
	w.count++
	return true
}

// Sweep forgets clients whose window has ended.
func (rl *RateLimiter) Sweep() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, w := range rl.clients {
		if now.Sub(w.start) >= rl.period {
			delete(rl.clients, key)
		}
	}
}

// Run sweeps once per period until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	if rl.limit <= 0 {
		return
	}
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}
