package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// OTPTTL is how long an emailed verification code stays valid.
const OTPTTL = 5 * time.Minute

// ResetTokenTTL is how long a password-reset token stays valid.
const ResetTokenTTL = 30 * time.Minute

// GenerateOTP returns a 6-digit numeric code from a cryptographically
// secure source. The range 100000..999999 guarantees exactly six digits.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// NewResetToken returns a raw password-reset token to email to the user
// and the SHA-256 hex digest to store. Only the digest ever touches the
// database, so a leaked dump cannot be replayed as reset links.
func NewResetToken() (raw, digest string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

// HashResetToken returns the SHA-256 hex digest of a raw reset token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
