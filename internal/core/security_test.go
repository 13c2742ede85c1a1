// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUsesRandomSalt(t *testing.T) {
	first, err := HashPassword("same input")
	require.NoError(t, err)

	second, err := HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "not-a-hash")
	assert.Error(t, err)

	_, err = VerifyPassword("anything", "$bcrypt$v=19$m=1,t=1,p=1$a$b")
	assert.Error(t, err)
}

func TestVerifyPasswordWithRehash(t *testing.T) {
	// A hash produced with the current parameters needs no rehash.
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	valid, newHash, err := VerifyPasswordWithRehash("pw", hash)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, newHash)

	valid, newHash, err = VerifyPasswordWithRehash("nope", hash)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Empty(t, newHash)
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	valid, _, err := VerifyPasswordTimingSafe("pw", &hash)
	require.NoError(t, err)
	assert.True(t, valid)

	// A missing hash always fails, after burning a real verification.
	valid, _, err = VerifyPasswordTimingSafe("pw", nil)
	require.NoError(t, err)
	assert.False(t, valid)

	empty := ""
	valid, _, err = VerifyPasswordTimingSafe("pw", &empty)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestTokenHashCompare(t *testing.T) {
	token, err := GenerateRefreshToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	hash := HashToken(token)
	assert.Len(t, hash, 64, "hex-encoded sha256")

	assert.True(t, CompareTokenHash(token, hash))
	assert.False(t, CompareTokenHash("other-token", hash))
}

func TestGenerateSecureTokenUnique(t *testing.T) {
	a, err := GenerateSecureToken(32)
	require.NoError(t, err)
	b, err := GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
