package models

import "time"

// User is a parent account
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"-"`
	OAuthSubject  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Session is a parent login session
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired reports whether the session is past its expiry time
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// PairingCode is a short-lived code a parent hands to the child app so the
// device can obtain a token scoped to one child
type PairingCode struct {
	Code      string    `json:"code"`
	ChildID   string    `json:"childId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired reports whether the pairing code can no longer be exchanged
func (p *PairingCode) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}
