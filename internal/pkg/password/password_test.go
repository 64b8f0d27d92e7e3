package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("reader-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "reader-secret", hash)

	assert.True(t, Verify("reader-secret", hash))
	assert.False(t, Verify("wrong-secret", hash))
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-one")
	b := HashToken("token-two")

	assert.Len(t, a, 64) // hex-encoded SHA-256
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, HashToken("token-one"))
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("12345678"))
	assert.False(t, Validate("1234567"))
}
