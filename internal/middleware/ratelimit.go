// Package middleware holds the HTTP wrappers shared by the web server:
// per-IP rate limiting, security headers and CORS.
package middleware

import (
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"
)

type visitor struct {
	connections int
	tokens      int
	lastRefill  time.Time
}

// IPRateLimiter tracks per-IP connection counts and request rates.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once

	maxConnsPerIP int
	rate          int
	window        time.Duration
}

// NewIPRateLimiter creates a rate limiter.
//   - maxConnsPerIP: max simultaneous websocket connections per IP
//   - rate: max requests or messages allowed per window
//   - window: time window for the rate
//
// Call Stop to end the background cleanup.
func NewIPRateLimiter(maxConnsPerIP, rate int, window time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors:      make(map[string]*visitor),
		now:           time.Now,
		done:          make(chan struct{}),
		maxConnsPerIP: maxConnsPerIP,
		rate:          rate,
		window:        window,
	}
	go rl.cleanup()
	return rl
}

// Stop ends the cleanup goroutine.
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// ConnectAllowed checks if an IP can open a new connection.
// If allowed, increments the connection count and returns true.
func (rl *IPRateLimiter) ConnectAllowed(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v := rl.visitor(ip)
	if v.connections >= rl.maxConnsPerIP {
		return false
	}
	v.connections++
	return true
}

// Disconnect decrements the connection count for an IP.
func (rl *IPRateLimiter) Disconnect(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, ok := rl.visitors[ip]; ok {
		v.connections = max(0, v.connections-1)
	}
}

// Allow reports whether a request or message from ip is within the rate.
// Token bucket: refills rate tokens per window.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v := rl.visitor(ip)
	now := rl.now()
	if elapsed := now.Sub(v.lastRefill); elapsed >= rl.window {
		windows := int(elapsed / rl.window)
		v.tokens = min(rl.rate, v.tokens+windows*rl.rate)
		v.lastRefill = v.lastRefill.Add(time.Duration(windows) * rl.window)
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// visitor returns the entry for ip, creating a full bucket. Caller holds mu.
func (rl *IPRateLimiter) visitor(ip string) *visitor {
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{tokens: rl.rate, lastRefill: rl.now()}
		rl.visitors[ip] = v
	}
	return v
}

// Middleware rejects requests over the rate with 429. Only the given methods
// are limited; no methods means every request.
func (rl *IPRateLimiter) Middleware(methods ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited := len(methods) == 0 || slices.Contains(methods, r.Method)
			if limited && !rl.Allow(RealIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"Too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cleanup removes idle entries (no connections, full bucket) every 5 minutes.
func (rl *IPRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *IPRateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, v := range rl.visitors {
		if v.connections <= 0 && now.Sub(v.lastRefill) >= rl.window {
			delete(rl.visitors, ip)
		}
	}
}

// RealIP extracts the client IP from the request.
// Checks X-Forwarded-For (for reverse proxies) then RemoteAddr.
func RealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if comma := strings.Index(xff, ","); comma > 0 {
			return strings.TrimSpace(xff[:comma])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
