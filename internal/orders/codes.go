package orders

import (
	"crypto/rand"
	"fmt"
)

// publicCodeAlphabet omits look-alike characters (0/O, 1/I/L) so codes
// survive being read over the phone.
const (
	publicCodeAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"
	publicCodeLength   = 8
	publicCodePrefix   = "PP-"
)

// NewPublicCode returns an opaque customer-facing order reference.
// Uniqueness is enforced by the database; callers retry on collision.
func NewPublicCode() (string, error) {
	buf := make([]byte, publicCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	for i, b := range buf {
		buf[i] = publicCodeAlphabet[int(b)%len(publicCodeAlphabet)]
	}
	return publicCodePrefix + string(buf), nil
}
