package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedhavyas/go-subkey/v2/sr25519"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

func TestKeyringSigner(t *testing.T) {
	signer, err := NewKeyringSigner(aliceURI, models.DefaultSS58Prefix)
	require.NoError(t, err)

	addr, err := signer.Address()
	require.NoError(t, err)
	assert.Equal(t, aliceAddress, addr)

	msg := []byte("transfer")
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	assert.Len(t, sig, 64)

	pub, err := sr25519.Scheme{}.FromPublicKey(signer.PublicKey())
	require.NoError(t, err)
	assert.True(t, pub.Verify(msg, sig))
}

func TestKeyringSignerInvalid(t *testing.T) {
	_, err := NewKeyringSigner("definitely not a mnemonic", models.DefaultSS58Prefix)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSigning)
}
