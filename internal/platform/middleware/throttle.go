package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rinkside/internal/platform/privacy"
)

// Throttle rate-limits requests per truncated caller fragment. It sits in
// front of the login endpoint so a single network cannot hammer the scrypt
// verifier; the per-team lockout handles the credential-guessing side.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*throttleEntry
	rate     rate.Limit
	burst    int
	logger   *slog.Logger
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewThrottle allows r requests per second with the given burst per caller
// fragment. Idle entries are dropped opportunistically on use.
func NewThrottle(r rate.Limit, burst int, logger *slog.Logger) *Throttle {
	return &Throttle{
		limiters: make(map[string]*throttleEntry),
		rate:     r,
		burst:    burst,
		logger:   logger,
	}
}

func (t *Throttle) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fragment := privacy.TruncateIP(r.RemoteAddr)
		if !t.allow(fragment) {
			t.logger.WarnContext(r.Context(), "request throttled",
				"remote_fragment", fragment,
				"path", r.URL.Path,
				"request_id", GetRequestID(r.Context()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"Too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Throttle) allow(fragment string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	e, ok := t.limiters[fragment]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.limiters[fragment] = e
	}
	e.lastSeen = now

	// Drop entries idle for ten minutes so the map stays bounded.
	if len(t.limiters) > 1024 {
		cutoff := now.Add(-10 * time.Minute)
		for k, v := range t.limiters {
			if v.lastSeen.Before(cutoff) {
				delete(t.limiters, k)
			}
		}
	}

	return e.limiter.Allow()
}
