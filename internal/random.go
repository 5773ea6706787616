package internal

import (
	"crypto/rand"
	"encoding/base64"
)

const opaqueTokenBytes = 32

// NewOpaqueToken returns 32 random bytes as unpadded base64url, the raw
// material for email-verification and password-reset tokens. Stores key by
// hash, so the value here is the only copy of the secret.
func NewOpaqueToken() (string, error) {
	raw := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
