package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintResetToken(t *testing.T) {
	token, err := MintResetToken()
	require.NoError(t, err)

	raw, err := hex.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, ResetTokenBytes)

	second, err := MintResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, second)
}

func TestDigestResetTokenDeterministic(t *testing.T) {
	token, err := MintResetToken()
	require.NoError(t, err)

	assert.Equal(t, DigestResetToken(token), DigestResetToken(token))
	assert.NotEqual(t, token, DigestResetToken(token))
}
