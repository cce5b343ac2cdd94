package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^[1-9][0-9]{5}$`), otp, "must be six digits with no leading zero")
		seen[otp] = true
	}
	assert.Greater(t, len(seen), 1, "fifty draws should not all collide")
}

func TestNewResetToken(t *testing.T) {
	raw, digest, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, raw, 40)    // 20 random bytes, hex
	assert.Len(t, digest, 64) // sha256, hex
	assert.NotEqual(t, raw, digest)
	assert.Equal(t, digest, HashResetToken(raw), "stored digest must match the hash of the emailed token")

	raw2, digest2, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
	assert.NotEqual(t, digest, digest2)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2boogaloo", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2boogaloo", hash)
	assert.True(t, VerifyPassword(hash, "hunter2boogaloo"))
	assert.False(t, VerifyPassword(hash, "hunter2"))
}

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("secret", "64f000000000000000000001", "admin", 60)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.False(t, tok.Exp.IsZero())
}
