package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SessionIDLength is the number of random bytes behind a session ID.
const SessionIDLength = 32

var sessionIDEncoding = base64.URLEncoding.WithPadding(base64.NoPadding)

// NewSessionID returns a random, cookie-safe session identifier
// (43 characters of unpadded base64url).
func NewSessionID() (string, error) {
	buf := make([]byte, SessionIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return sessionIDEncoding.EncodeToString(buf), nil
}

// IsValidSessionID reports whether id has the shape NewSessionID produces.
// Cookies that fail this check are ignored and a fresh session is issued.
func IsValidSessionID(id string) bool {
	decoded, err := sessionIDEncoding.DecodeString(id)
	return err == nil && len(decoded) == SessionIDLength
}
