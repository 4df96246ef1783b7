package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// CSRFGenerator derives per-session CSRF tokens from an HMAC key. A token is
// recomputable from the session ID alone, so validation needs no stored
// token state.
type CSRFGenerator struct {
	key []byte
}

// NewCSRFGenerator creates a generator keyed with the given secret
func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{key: []byte(secret)}
}

func (g *CSRFGenerator) sum(sessionID string) []byte {
	mac := hmac.New(sha256.New, g.key)
	mac.Write([]byte(sessionID))
	return mac.Sum(nil)
}

// GenerateToken returns the CSRF token bound to sessionID
func (g *CSRFGenerator) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session ID is required")
	}
	return hex.EncodeToString(g.sum(sessionID)), nil
}

// ValidateToken reports whether token is the one bound to sessionID
func (g *CSRFGenerator) ValidateToken(sessionID, token string) bool {
	if sessionID == "" {
		return false
	}
	decoded, err := hex.DecodeString(token)
	if err != nil || len(decoded) == 0 {
		return false
	}
	return hmac.Equal(g.sum(sessionID), decoded)
}
