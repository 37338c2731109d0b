package models

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// AddressFormat tells how the runtime encodes the signer and call addresses.
type AddressFormat uint8

const (
	// AddressMultiAddress is sp_runtime::MultiAddress, encoded as the Id variant.
	AddressMultiAddress AddressFormat = iota
	// AddressAccountID is a bare 32-byte AccountId32.
	AddressAccountID
)

// MultiSignature variant indexes.
const (
	SignatureEd25519 byte = 0
	SignatureSr25519 byte = 1
	SignatureEcdsa   byte = 2
)

// EncodeAddress encodes a 32-byte account id in the given format.
func EncodeAddress(format AddressFormat, accountID []byte) ([]byte, error) {
	if len(accountID) != 32 {
		return nil, fmt.Errorf("account id must be 32 bytes, got %d", len(accountID))
	}
	if format == AddressAccountID {
		return append([]byte{}, accountID...), nil
	}
	return append([]byte{0x00}, accountID...), nil
}

func decodeAddress(decoder *scale.Decoder, format AddressFormat) ([]byte, error) {
	if format == AddressAccountID {
		return readN(decoder, 32)
	}
	variant, err := decoder.ReadOneByte()
	if err != nil {
		return nil, err
	}
	var body []byte
	switch variant {
	case 0, 3: // Id, Address32
		body, err = readN(decoder, 32)
	case 1: // Index
		var n uint64
		n, err = decodeCompactUint64(decoder)
		body = EncodeCompactUint(n)
	case 2: // Raw
		var n uint64
		n, err = decodeCompactUint64(decoder)
		if err == nil {
			body, err = readN(decoder, int(n))
			body = append(EncodeCompactUint(n), body...)
		}
	case 4: // Address20
		body, err = readN(decoder, 20)
	default:
		return nil, fmt.Errorf("unknown MultiAddress variant %d", variant)
	}
	if err != nil {
		return nil, err
	}
	return append([]byte{variant}, body...), nil
}

// ExtrinsicSignature is the signed part of a v4 extrinsic: signer address,
// MultiSignature and the signed extensions' extra bytes.
type ExtrinsicSignature struct {
	Signer    []byte
	Signature []byte
	Extra     []byte
}

func (s ExtrinsicSignature) Encode(encoder scale.Encoder) (err error) {
	err = encoder.Write(s.Signer)
	if err != nil {
		return
	}
	err = encoder.Write(s.Signature)
	if err != nil {
		return
	}
	err = encoder.Write(s.Extra)
	return
}

func decodeMultiSignature(decoder *scale.Decoder) ([]byte, error) {
	variant, err := decoder.ReadOneByte()
	if err != nil {
		return nil, err
	}
	size := 64
	switch variant {
	case SignatureEd25519, SignatureSr25519:
	case SignatureEcdsa:
		size = 65
	default:
		return nil, fmt.Errorf("unknown MultiSignature variant %d", variant)
	}
	sig, err := readN(decoder, size)
	if err != nil {
		return nil, err
	}
	return append([]byte{variant}, sig...), nil
}

func readN(decoder *scale.Decoder, n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := decoder.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
