package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"couponsystem/internal/metrics"
)

// RateLimiter is a fixed-window per-client request counter.
type RateLimiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	requests    map[string]int
	windowStart time.Time
	now         func() time.Time
	log         zerolog.Logger
}

func NewRateLimiter(limit int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		window:      window,
		requests:    make(map[string]int),
		windowStart: time.Now(),
		now:         time.Now,
		log:         log,
	}
}

// Run resets stale windows until ctx is done, so idle clients do not pin memory.
func (r *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			r.resetIfElapsed()
			r.mu.Unlock()
		}
	}
}

func (r *RateLimiter) resetIfElapsed() {
	if now := r.now(); now.Sub(r.windowStart) >= r.window {
		r.requests = make(map[string]int)
		r.windowStart = now
	}
}

func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetIfElapsed()

	count := r.requests[key]
	if count >= r.limit {
		return false
	}
	r.requests[key] = count + 1
	return true
}

func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key := clientKey(req.RemoteAddr)
		if !r.Allow(key) {
			metrics.RateLimitedTotal.Inc()
			r.log.Warn().Str("client", key).Msg("rate limit exceeded")
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, req)
	})
}

func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
