package models

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"golang.org/x/crypto/blake2b"
)

const (
	ExtrinsicVersion4      byte = 4
	ExtrinsicBitSigned     byte = 0x80
	ExtrinsicUnmaskVersion byte = 0x7f

	// MaxUnhashedPayload is the largest signing payload signed as-is; longer
	// payloads are signed through their blake2b-256 hash.
	MaxUnhashedPayload = 256
)

// Signer produces sr25519 signatures for a public key.
type Signer interface {
	PublicKey() []byte
	Sign(msg []byte) ([]byte, error)
}

// Extrinsic is a v4 extrinsic wrapping an encoded call.
type Extrinsic struct {
	// Version is the encoded version flag (which encodes the raw transaction version and signing information in one byte)
	Version byte
	// Signature is present when the signed bit of Version is set
	Signature ExtrinsicSignature
	// Method is the SCALE-encoded call
	Method []byte
}

func NewExtrinsic(method []byte) Extrinsic {
	return Extrinsic{
		Version: ExtrinsicVersion4,
		Method:  method,
	}
}

// IsSigned returns true if the extrinsic is signed
func (e Extrinsic) IsSigned() bool {
	return e.Version&ExtrinsicBitSigned == ExtrinsicBitSigned
}

// Type returns the raw transaction version (not flagged with signing information)
func (e Extrinsic) Type() uint8 {
	return e.Version & ExtrinsicUnmaskVersion
}

// SigningPayload returns call ‖ extra ‖ additional, hashed with blake2b-256
// when longer than MaxUnhashedPayload.
func SigningPayload(method []byte, bundle *SignedExtensionBundle) []byte {
	payload := append(append(append([]byte{}, method...), bundle.Extra()...), bundle.Additional()...)
	if len(payload) > MaxUnhashedPayload {
		h := blake2b.Sum256(payload)
		return h[:]
	}
	return payload
}

// Sign adds a signature to the extrinsic and returns the bytes that were
// signed.
func (e *Extrinsic) Sign(signer Signer, bundle *SignedExtensionBundle, format AddressFormat) ([]byte, error) {
	if e.Type() != ExtrinsicVersion4 {
		return nil, fmt.Errorf("unsupported extrinsic version: %v (isSigned: %v, type: %v)", e.Version, e.IsSigned(), e.Type())
	}

	payload := SigningPayload(e.Method, bundle)
	sig, err := signer.Sign(payload)
	if err != nil {
		return nil, err
	}
	if len(sig) != 64 {
		return nil, fmt.Errorf("unexpected sr25519 signature length %d", len(sig))
	}

	signerAddr, err := EncodeAddress(format, signer.PublicKey())
	if err != nil {
		return nil, err
	}

	e.Signature = ExtrinsicSignature{
		Signer:    signerAddr,
		Signature: append([]byte{SignatureSr25519}, sig...),
		Extra:     bundle.Extra(),
	}

	// mark the extrinsic as signed
	e.Version |= ExtrinsicBitSigned

	return payload, nil
}

func (e Extrinsic) Encode(encoder scale.Encoder) error {
	if e.Type() != ExtrinsicVersion4 {
		return fmt.Errorf("unsupported extrinsic version: %v (isSigned: %v, type: %v)", e.Version, e.IsSigned(),
			e.Type())
	}

	// create a temporary buffer that will receive the plain encoded transaction (version, signature (optional),
	// method/call)
	var bb = bytes.Buffer{}
	tempEnc := scale.NewEncoder(&bb)

	// encode the version of the extrinsic
	err := tempEnc.PushByte(e.Version)
	if err != nil {
		return err
	}

	// encode the signature if signed
	if e.IsSigned() {
		err = e.Signature.Encode(*tempEnc)
		if err != nil {
			return err
		}
	}

	// encode the method
	err = tempEnc.Write(e.Method)
	if err != nil {
		return err
	}

	// take the temporary buffer to determine length, write that as prefix
	eb := bb.Bytes()
	err = encoder.EncodeUintCompact(*big.NewInt(0).SetUint64(uint64(len(eb))))
	if err != nil {
		return err
	}

	// write the actual encoded transaction
	return encoder.Write(eb)
}

// Bytes returns the length-prefixed encoding submitted to the node.
func (e Extrinsic) Bytes() ([]byte, error) {
	var bb = bytes.Buffer{}
	if err := e.Encode(*scale.NewEncoder(&bb)); err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}

// Hash is the transaction hash the node reports for the encoded extrinsic.
func Hash(encoded []byte) [32]byte {
	return blake2b.Sum256(encoded)
}

// DecodeExtrinsic parses a length-prefixed signed extrinsic using the
// runtime's signed extension order.
func DecodeExtrinsic(raw []byte, identifiers []string, format AddressFormat) (e Extrinsic, extra DecodedExtra, err error) {
	reader := bytes.NewReader(raw)
	decoder := scale.NewDecoder(reader)

	// compact length encoding (1, 2, or 4 bytes)
	length, err := decodeCompactUint64(decoder)
	if err != nil {
		return
	}
	if length != uint64(reader.Len()) {
		err = fmt.Errorf("length prefix %d does not match %d remaining bytes", length, reader.Len())
		return
	}

	// version, signature bitmask (1 byte)
	e.Version, err = decoder.ReadOneByte()
	if err != nil {
		return
	}
	if e.Type() != ExtrinsicVersion4 {
		err = fmt.Errorf("unsupported extrinsic version: %v (isSigned: %v, type: %v)", e.Version, e.IsSigned(), e.Type())
		return
	}
	if !e.IsSigned() {
		err = errors.New("extrinsic is not signed")
		return
	}

	e.Signature.Signer, err = decodeAddress(decoder, format)
	if err != nil {
		return
	}
	e.Signature.Signature, err = decodeMultiSignature(decoder)
	if err != nil {
		return
	}

	before := reader.Len()
	extra, err = decodeExtra(decoder, identifiers)
	if err != nil {
		return
	}
	extraLen := before - reader.Len()
	offset := len(raw) - before
	e.Signature.Extra = append([]byte{}, raw[offset:offset+extraLen]...)

	// call
	e.Method = append([]byte{}, raw[len(raw)-reader.Len():]...)
	if len(e.Method) == 0 {
		err = errors.New("extrinsic has no call")
	}
	return
}

// SelfCheck verifies that bundle follows the runtime's extension order and
// that the encoded extrinsic decodes back to the bundle's values.
func SelfCheck(encoded []byte, bundle *SignedExtensionBundle, identifiers []string, format AddressFormat) error {
	if err := bundle.CheckOrder(identifiers); err != nil {
		return err
	}
	decoded, extra, err := DecodeExtrinsic(encoded, identifiers, format)
	if err != nil {
		return fmt.Errorf("round-trip decode: %w", err)
	}
	if !bytes.Equal(decoded.Signature.Extra, bundle.Extra()) {
		return fmt.Errorf("%w: extra bytes differ after round-trip", ErrBundleOrder)
	}
	if err := bundle.Matches(extra); err != nil {
		return fmt.Errorf("%w: %v", ErrBundleOrder, err)
	}
	return nil
}
