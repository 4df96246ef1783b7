package security

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns an unguessable identifier for a parent session.
func NewSessionID() string {
	return uuid.New().String()
}

// NewStateToken returns a random hex value, used for the OAuth state round
// trip and other one-shot secrets.
func NewStateToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func requestIsHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// SessionCookie builds the parent session cookie: HttpOnly, SameSite=Lax,
// Secure whenever the request arrived over HTTPS (directly or behind a
// forwarding proxy).
func SessionCookie(r *http.Request, name, sessionID string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    sessionID,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   requestIsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// StateCookie builds a short-lived cookie carrying OAuth round-trip state.
func StateCookie(r *http.Request, name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   requestIsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpireCookie builds a replacement cookie that makes the browser drop the
// named one.
func ExpireCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   requestIsHTTPS(r),
	}
}
