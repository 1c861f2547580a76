package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// RateLimitMiddleware provides sliding-window rate limiting per client IP
type RateLimitMiddleware struct {
	requests  map[string][]time.Time // IP -> request times
	lastSweep time.Time
	mu        sync.Mutex
	now       func() time.Time

	// trustProxy lets X-Forwarded-For and X-Real-IP name the client. Only
	// enable it behind a proxy that overwrites those headers.
	trustProxy bool
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware(trustProxy bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests:   make(map[string][]time.Time),
		now:        time.Now,
		trustProxy: trustProxy,
	}
}

// RateLimit allows maxRequests per client within window. A non-positive
// maxRequests disables the limit.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxRequests <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipLimit(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			clientIP := getClientIP(r, m.trustProxy)
			if !m.allow(clientIP, maxRequests, window) {
				log.WithFields(log.Fields{"client_ip": clientIP, "path": r.URL.Path}).Warn("Rate limit exceeded")
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimitMiddleware) allow(clientIP string, maxRequests int, window time.Duration) bool {
	now := m.now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= window {
		m.sweep(windowStart)
		m.lastSweep = now
	}

	valid := m.requests[clientIP][:0]
	for _, ts := range m.requests[clientIP] {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	if len(valid) >= maxRequests {
		m.requests[clientIP] = valid
		return false
	}
	m.requests[clientIP] = append(valid, now)
	return true
}

// sweep drops clients with no request after windowStart. Times are appended
// in order, so the last one is the newest. Callers hold m.mu.
func (m *RateLimitMiddleware) sweep(windowStart time.Time) {
	for ip, times := range m.requests {
		if len(times) == 0 || !times[len(times)-1].After(windowStart) {
			delete(m.requests, ip)
		}
	}
}

// shouldSkipLimit exempts probes and scrapes
func shouldSkipLimit(path string) bool {
	return path == "/health" || path == "/metrics"
}

// getClientIP extracts the client IP from the request. Forwarding headers
// are only read when trustProxy is set.
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
			return strings.TrimSpace(strings.Split(ip, ",")[0])
		}
		if ip := r.Header.Get("X-Real-IP"); ip != "" {
			return ip
		}
	}

	// Fall back to remote address
	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
