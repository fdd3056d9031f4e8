package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"login-backend/internal/credentials"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hash, err := credentials.Hash("pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, "pw123456", hash)

	assert.True(t, credentials.Verify("pw123456", hash))
	assert.False(t, credentials.Verify("wrong-password", hash))
}

func TestVerifyEmptyHash(t *testing.T) {
	t.Parallel()

	// OAuth-only accounts have no stored hash; any password must fail.
	assert.False(t, credentials.Verify("pw123456", ""))
	assert.False(t, credentials.Verify("", ""))
}
