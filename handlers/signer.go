package handlers

import (
	subkey "github.com/vedhavyas/go-subkey/v2"
	"github.com/vedhavyas/go-subkey/v2/sr25519"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

// KeyringSigner is an sr25519 key derived from a mnemonic or secret URI
// (e.g. "<phrase>//Alice").
type KeyringSigner struct {
	kp     subkey.KeyPair
	prefix uint16
}

// SignerFactory derives a signer for the given network prefix.
type SignerFactory func(secretURI string, prefix uint16) (AddressSigner, error)

// AddressSigner is a models.Signer that also knows its SS58 address.
type AddressSigner interface {
	models.Signer
	Address() (string, error)
}

func NewKeyringSigner(secretURI string, prefix uint16) (AddressSigner, error) {
	kp, err := subkey.DeriveKeyPair(sr25519.Scheme{}, secretURI)
	if err != nil {
		// the secret itself is not echoed
		return nil, models.NewError(models.ErrSigning, "mnemonic", err)
	}
	return &KeyringSigner{kp: kp, prefix: prefix}, nil
}

func (s *KeyringSigner) PublicKey() []byte {
	return s.kp.Public()
}

func (s *KeyringSigner) Sign(msg []byte) ([]byte, error) {
	return s.kp.Sign(msg)
}

func (s *KeyringSigner) Address() (string, error) {
	return models.SS58Encode(s.kp.Public(), s.prefix)
}
