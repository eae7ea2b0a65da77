package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newLimiter(conns, rate int, window time.Duration) (*IPRateLimiter, *time.Time) {
	rl := NewIPRateLimiter(conns, rate, window)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestAllowRefills(t *testing.T) {
	rl, now := newLimiter(1, 3, time.Second)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request in the window allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other IPs have their own bucket")
	}

	*now = now.Add(time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("bucket not refilled after the window")
	}
}

func TestConnectAllowed(t *testing.T) {
	rl, _ := newLimiter(2, 10, time.Second)
	defer rl.Stop()

	if !rl.ConnectAllowed("ip") || !rl.ConnectAllowed("ip") {
		t.Fatal("connections under the limit rejected")
	}
	if rl.ConnectAllowed("ip") {
		t.Fatal("third connection allowed")
	}
	rl.Disconnect("ip")
	if !rl.ConnectAllowed("ip") {
		t.Fatal("slot not freed by Disconnect")
	}
}

func TestPrune(t *testing.T) {
	rl, now := newLimiter(2, 10, time.Second)
	defer rl.Stop()

	rl.Allow("idle")
	rl.ConnectAllowed("busy")
	*now = now.Add(time.Minute)
	rl.prune()

	if _, ok := rl.visitors["idle"]; ok {
		t.Fatal("idle visitor kept")
	}
	if _, ok := rl.visitors["busy"]; !ok {
		t.Fatal("connected visitor dropped")
	}
}

func TestMiddlewareLimitsMethods(t *testing.T) {
	rl, _ := newLimiter(1, 1, time.Minute)
	defer rl.Stop()
	h := rl.Middleware(http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(method string) int {
		req := httptest.NewRequest(method, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if do(http.MethodPost) != http.StatusOK {
		t.Fatal("first POST rejected")
	}
	if code := do(http.MethodPost); code != http.StatusTooManyRequests {
		t.Fatalf("second POST = %d, want 429", code)
	}
	if do(http.MethodGet) != http.StatusOK {
		t.Fatal("GET must not be limited")
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := RealIP(req); got != "10.0.0.1" {
		t.Fatalf("got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := RealIP(req); got != "203.0.113.7" {
		t.Fatalf("got %q", got)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:8000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantCode   int
		wantHeader string
	}{
		{"allowed", http.MethodGet, "http://localhost:8000", false, http.StatusTeapot, "http://localhost:8000"},
		{"other origin", http.MethodGet, "https://evil.example", false, http.StatusTeapot, ""},
		{"no origin", http.MethodGet, "", false, http.StatusTeapot, ""},
		{"preflight allowed", http.MethodOptions, "http://localhost:8000", true, http.StatusNoContent, "http://localhost:8000"},
		{"preflight denied", http.MethodOptions, "https://evil.example", true, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Fatalf("allow origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	got := ParseOrigins(" https://a.example/, ,http://b.example:8000")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "http://b.example:8000" {
		t.Fatalf("got %q", got)
	}
}

func TestChainAndSecurityHeaders(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.NotFoundHandler(), SecurityHeaders, mw("a"), mw("b"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("order = %v", order)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("security headers missing")
	}
}
