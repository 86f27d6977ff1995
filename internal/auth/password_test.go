package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petalpost/florist-backend/pkg/config"
)

// Low-cost parameters keep the hashing tests fast.
func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword(testPasswordConfig(), "correct horse battery")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword(hash, "correct horse battery")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "incorrect horse battery")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashesAreSalted(t *testing.T) {
	cfg := testPasswordConfig()
	first, err := HashPassword(cfg, "same password")
	require.NoError(t, err)
	second, err := HashPassword(cfg, "same password")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordKeepsWorkingAfterConfigChange(t *testing.T) {
	// Parameters are read from the hash, not from the live config.
	old := testPasswordConfig()
	hash, err := HashPassword(old, "secret password")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "secret password")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$not-base64!$a2V5",
	} {
		_, err := VerifyPassword(encoded, "whatever")
		assert.Error(t, err, encoded)
	}
}
