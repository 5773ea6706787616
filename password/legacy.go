// Package password implements the legacy credential digest used by the game
// server's account table. The format is fixed by the server core and cannot
// change without breaking every existing account row.
package password

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Hash computes the account digest: lowercase hex SHA1 of
// "UPPER(username):UPPER(password)". The output is always 40 characters.
func Hash(password, username string) string {
	sum := sha1.Sum([]byte(strings.ToUpper(username) + ":" + strings.ToUpper(password)))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether password/username produce digest. Comparison is
// constant-time and case-insensitive on the hex text, since rows written by
// other tools may carry uppercase digests. Malformed digests simply fail.
func Verify(password, username, digest string) bool {
	computed := Hash(password, username)
	stored := strings.ToLower(digest)
	if len(stored) != len(computed) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1
}
