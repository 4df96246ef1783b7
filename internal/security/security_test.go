package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("familie123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "familie123" {
		t.Error("hash should not equal the plaintext password")
	}
	if !CheckPassword("familie123", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("familie124", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestNewSessionID(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == b {
		t.Error("session IDs should be unique")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID format, got %q", a)
	}
}

func TestNewStateToken(t *testing.T) {
	a := NewStateToken()
	b := NewStateToken()
	if a == b {
		t.Error("state tokens should be unique")
	}
	if len(a) != 32 {
		t.Errorf("expected 16 random bytes hex encoded, got %q", a)
	}
}

func TestCSRFGenerator(t *testing.T) {
	gen := NewCSRFGenerator("test-secret")

	token, err := gen.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if !gen.ValidateToken("session-1", token) {
		t.Error("token should validate for its own session")
	}
	if gen.ValidateToken("session-2", token) {
		t.Error("token should not validate for another session")
	}
	if gen.ValidateToken("session-1", "") {
		t.Error("empty token should not validate")
	}

	if _, err := gen.GenerateToken(""); err == nil {
		t.Error("expected error for empty session ID")
	}

	other := NewCSRFGenerator("different-secret")
	if other.ValidateToken("session-1", token) {
		t.Error("token should not validate under a different secret")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over the limit should be denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("a different client should have its own bucket")
	}
}

func TestSessionCookieFlags(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/login", nil)
	cookie := SessionCookie(r, "session_id", "abc", time.Now().Add(time.Hour))
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if cookie.Secure {
		t.Error("plain HTTP request should not set the Secure flag")
	}

	r.Header.Set("X-Forwarded-Proto", "https")
	cookie = SessionCookie(r, "session_id", "abc", time.Now().Add(time.Hour))
	if !cookie.Secure {
		t.Error("forwarded HTTPS request should set the Secure flag")
	}
}

func TestExpireCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/logout", nil)
	cookie := ExpireCookie(r, "session_id")
	if cookie.MaxAge != -1 {
		t.Errorf("expire cookie MaxAge = %d, want -1", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Error("expire cookie should carry no value")
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.168.1.5:1234"
	if ip := GetClientIP(r); ip != "192.168.1.5" {
		t.Errorf("expected RemoteAddr host, got %q", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := GetClientIP(r); ip != "203.0.113.9" {
		t.Errorf("expected first forwarded hop, got %q", ip)
	}
}
