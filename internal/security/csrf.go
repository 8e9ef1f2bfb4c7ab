package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// CSRFHeader carries the token on state-changing API calls from the browser
const CSRFHeader = "X-CSRF-Token"

var ErrNoSession = errors.New("csrf token needs a session")

// CSRFGenerator derives CSRF tokens from the browser session id with
// HMAC-SHA256, so any replica holding the secret can check them.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates a generator keyed by secret.
func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: []byte(secret)}
}

// GenerateToken returns the token for sessionID.
func (g *CSRFGenerator) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrNoSession
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte("csrf:"))
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token belongs to sessionID.
func (g *CSRFGenerator) ValidateToken(sessionID, token string) bool {
	expected, err := g.GenerateToken(sessionID)
	if err != nil || token == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
