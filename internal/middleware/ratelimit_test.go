package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !rl.Allow("key") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow("key") {
		t.Error("6th request should be denied")
	}
	if !rl.Allow("other") {
		t.Error("a different key has its own bucket")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(2, 20*time.Millisecond)

	rl.Allow("key")
	rl.Allow("key")
	if rl.Allow("key") {
		t.Error("should be blocked once the burst is spent")
	}

	time.Sleep(25 * time.Millisecond)

	if !rl.Allow("key") {
		t.Error("should be allowed after tokens refill")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, 10*time.Millisecond)

	rl.Allow("expired")
	time.Sleep(15 * time.Millisecond)
	rl.Allow("active")

	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["expired"]; ok {
		t.Error("idle entry should have been cleaned up")
	}
	if _, ok := rl.entries["active"]; !ok {
		t.Error("active entry should still exist")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	handler := RateLimit(rl, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest("POST", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("3rd request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := RealIP(req); got != "10.0.0.1" {
		t.Errorf("RealIP = %q, want %q", got, "10.0.0.1")
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := RealIP(req); got != "203.0.113.5" {
		t.Errorf("RealIP = %q, want %q", got, "203.0.113.5")
	}

	req.Header.Set("CF-Connecting-IP", "198.51.100.7")
	if got := RealIP(req); got != "198.51.100.7" {
		t.Errorf("RealIP = %q, want %q", got, "198.51.100.7")
	}
}

func TestRateLimitIgnoresForwardedHeadersUnlessTrusted(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	send := func(h http.Handler, forwarded string) int {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	untrusted := RateLimit(NewRateLimiter(1, time.Minute), false)(ok)
	send(untrusted, "203.0.113.1")
	if code := send(untrusted, "203.0.113.2"); code != http.StatusTooManyRequests {
		t.Errorf("rotated header, untrusted: status = %d, want %d", code, http.StatusTooManyRequests)
	}

	trusted := RateLimit(NewRateLimiter(1, time.Minute), true)(ok)
	send(trusted, "203.0.113.1")
	if code := send(trusted, "203.0.113.2"); code != http.StatusOK {
		t.Errorf("distinct forwarded clients, trusted: status = %d, want %d", code, http.StatusOK)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("CF-Connecting-IP", "198.51.100.7")

	if got := ClientIP(req, false); got != "10.0.0.1" {
		t.Errorf("ClientIP(untrusted) = %q, want %q", got, "10.0.0.1")
	}
	if got := ClientIP(req, true); got != "198.51.100.7" {
		t.Errorf("ClientIP(trusted) = %q, want %q", got, "198.51.100.7")
	}
}
