package models

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// Signed extension identifiers understood by the assembler.
const (
	CheckNonZeroSender       = "CheckNonZeroSender"
	CheckSpecVersion         = "CheckSpecVersion"
	CheckTxVersion           = "CheckTxVersion"
	CheckGenesis             = "CheckGenesis"
	CheckMortality           = "CheckMortality"
	CheckEra                 = "CheckEra"
	CheckNonce               = "CheckNonce"
	CheckWeight              = "CheckWeight"
	ChargeTransactionPayment = "ChargeTransactionPayment"
	ChargeAssetTxPayment     = "ChargeAssetTxPayment"
	CheckMetadataHash        = "CheckMetadataHash"
	PrevalidateAttests       = "PrevalidateAttests"
	StorageWeightReclaim     = "StorageWeightReclaim"
)

var ErrBundleOrder = errors.New("signed extension order does not match runtime")

// ExtensionParams are the values the signed extensions draw from.
type ExtensionParams struct {
	Nonce              uint64
	Tip                *big.Int
	Era                Era
	SpecVersion        uint32
	TransactionVersion uint32
	GenesisHash        types.Hash
	// BlockHash is the era checkpoint; genesis for an immortal era.
	BlockHash types.Hash
	// MetadataHash is nil unless a commitment is attached.
	MetadataHash *MetadataCommitment
}

// SignedExtension is one encoded entry of a bundle. Extra travels inside the
// extrinsic, Additional only inside the signing payload.
type SignedExtension struct {
	Identifier string
	Extra      []byte
	Additional []byte
}

// SignedExtensionBundle is the ordered set of extension parameters, in the
// order the runtime declares them.
type SignedExtensionBundle struct {
	Params     ExtensionParams
	Extensions []SignedExtension
}

// NewSignedExtensionBundle encodes params for every identifier, in order.
func NewSignedExtensionBundle(identifiers []string, params ExtensionParams) (*SignedExtensionBundle, error) {
	b := &SignedExtensionBundle{Params: params}
	for _, id := range identifiers {
		ext, err := encodeExtension(id, params)
		if err != nil {
			return nil, err
		}
		b.Extensions = append(b.Extensions, ext)
	}
	return b, nil
}

func encodeExtension(id string, p ExtensionParams) (ext SignedExtension, err error) {
	ext.Identifier = id
	switch id {
	case CheckNonZeroSender, CheckWeight, PrevalidateAttests, StorageWeightReclaim:
	case CheckSpecVersion:
		ext.Additional = encodeU32(p.SpecVersion)
	case CheckTxVersion:
		ext.Additional = encodeU32(p.TransactionVersion)
	case CheckGenesis:
		ext.Additional = append([]byte{}, p.GenesisHash[:]...)
	case CheckMortality, CheckEra:
		ext.Extra = p.Era.Bytes()
		if p.Era.IsMortal {
			ext.Additional = append([]byte{}, p.BlockHash[:]...)
		} else {
			ext.Additional = append([]byte{}, p.GenesisHash[:]...)
		}
	case CheckNonce:
		ext.Extra = EncodeCompactUint(p.Nonce)
	case ChargeTransactionPayment, ChargeAssetTxPayment:
		tip := p.Tip
		if tip == nil {
			tip = new(big.Int)
		}
		if tip.Cmp(MaxU128) > 0 {
			return ext, NewError(ErrAssembly, "tip", fmt.Errorf("tip overflows u128"))
		}
		ext.Extra, err = EncodeCompact(tip)
		if err != nil {
			return ext, NewError(ErrAssembly, "tip", err)
		}
		if id == ChargeAssetTxPayment {
			// asset_id: None pays in the native token
			ext.Extra = append(ext.Extra, 0)
		}
	case CheckMetadataHash:
		if p.MetadataHash == nil || !p.MetadataHash.Required || p.MetadataHash.Digest == nil {
			ext.Extra = []byte{byte(CheckMetadataModeDisabled)}
			ext.Additional = []byte{0}
		} else {
			ext.Extra = []byte{byte(p.MetadataHash.Mode)}
			ext.Additional = append([]byte{1}, p.MetadataHash.Digest[:]...)
		}
	default:
		return ext, NewError(ErrUnsupportedExtension, id, nil)
	}
	return ext, nil
}

func (b *SignedExtensionBundle) Identifiers() []string {
	ids := make([]string, len(b.Extensions))
	for i, ext := range b.Extensions {
		ids[i] = ext.Identifier
	}
	return ids
}

// Extra is the concatenation of every extension's extrinsic part.
func (b *SignedExtensionBundle) Extra() []byte {
	var out []byte
	for _, ext := range b.Extensions {
		out = append(out, ext.Extra...)
	}
	return out
}

// Additional is the concatenation of every extension's signed-only part.
func (b *SignedExtensionBundle) Additional() []byte {
	var out []byte
	for _, ext := range b.Extensions {
		out = append(out, ext.Additional...)
	}
	return out
}

// CheckOrder fails unless the bundle lists exactly the runtime's identifiers
// in the runtime's order.
func (b *SignedExtensionBundle) CheckOrder(identifiers []string) error {
	got := b.Identifiers()
	if len(got) != len(identifiers) {
		return fmt.Errorf("%w: bundle has %d extensions, runtime declares %d", ErrBundleOrder, len(got), len(identifiers))
	}
	for i := range identifiers {
		if got[i] != identifiers[i] {
			return fmt.Errorf("%w: position %d is %s, runtime declares %s", ErrBundleOrder, i, got[i], identifiers[i])
		}
	}
	return nil
}

// DecodedExtra holds the values recovered from the extra bytes of an
// extrinsic.
type DecodedExtra struct {
	Era          Era
	Nonce        uint64
	Tip          *big.Int
	MetadataMode *CheckMetadataMode
}

func decodeExtra(decoder *scale.Decoder, identifiers []string) (out DecodedExtra, err error) {
	out.Tip = new(big.Int)
	for _, id := range identifiers {
		switch id {
		case CheckNonZeroSender, CheckWeight, PrevalidateAttests, StorageWeightReclaim,
			CheckSpecVersion, CheckTxVersion, CheckGenesis:
		case CheckMortality, CheckEra:
			err = out.Era.Decode(*decoder)
		case CheckNonce:
			out.Nonce, err = decodeCompactUint64(decoder)
		case ChargeTransactionPayment, ChargeAssetTxPayment:
			var tip *big.Int
			tip, err = decoder.DecodeUintCompact()
			if err == nil {
				out.Tip = tip
			}
			if err == nil && id == ChargeAssetTxPayment {
				var some byte
				some, err = decoder.ReadOneByte()
				if err == nil && some != 0 {
					err = errors.New("asset payment with a non-native asset")
				}
			}
		case CheckMetadataHash:
			var mode byte
			mode, err = decoder.ReadOneByte()
			m := CheckMetadataMode(mode)
			out.MetadataMode = &m
		default:
			return out, NewError(ErrUnsupportedExtension, id, nil)
		}
		if err != nil {
			return out, fmt.Errorf("decoding %s: %w", id, err)
		}
	}
	return out, nil
}

// Matches compares decoded extrinsic values with the bundle parameters.
func (b *SignedExtensionBundle) Matches(d DecodedExtra) error {
	p := b.Params
	for _, id := range b.Identifiers() {
		switch id {
		case CheckMortality, CheckEra:
			if d.Era != p.Era {
				return fmt.Errorf("era mismatch: %+v != %+v", d.Era, p.Era)
			}
		case CheckNonce:
			if d.Nonce != p.Nonce {
				return fmt.Errorf("nonce mismatch: %d != %d", d.Nonce, p.Nonce)
			}
		case ChargeTransactionPayment, ChargeAssetTxPayment:
			tip := p.Tip
			if tip == nil {
				tip = new(big.Int)
			}
			if d.Tip.Cmp(tip) != 0 {
				return fmt.Errorf("tip mismatch: %v != %v", d.Tip, tip)
			}
		case CheckMetadataHash:
			want := CheckMetadataModeDisabled
			if p.MetadataHash != nil && p.MetadataHash.Required {
				want = p.MetadataHash.Mode
			}
			if d.MetadataMode == nil || *d.MetadataMode != want {
				return fmt.Errorf("metadata hash mode mismatch")
			}
		}
	}
	return nil
}
