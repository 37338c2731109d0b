package metahash

import (
	"errors"
	"fmt"

	"github.com/skyvein-baas/client-skyvein-golang-api/metadata"
)

// digestV1 is the MetadataDigest enum index of the only defined version.
const digestV1 = 1

// ChainInfo binds the digest to one chain and runtime.
type ChainInfo struct {
	SpecVersion  uint32
	SpecName     string
	Base58Prefix uint16
	Decimals     uint
	TokenSymbol  string
}

// Digest combines the tree root and extrinsic metadata hash with the chain
// identity.
func Digest(root, extrinsic Hash, info ChainInfo) (Hash, error) {
	if info.Decimals > 255 {
		return Hash{}, fmt.Errorf("decimals %d do not fit in u8", info.Decimals)
	}
	e := newEncoder()
	e.u8(digestV1)
	e.write(root[:])
	e.write(extrinsic[:])
	e.u32(info.SpecVersion)
	e.str(info.SpecName)
	e.u16(info.Base58Prefix)
	e.u8(uint8(info.Decimals))
	e.str(info.TokenSymbol)
	b, err := e.bytes()
	if err != nil {
		return Hash{}, err
	}
	return hash(b), nil
}

// FromMetadata computes the digest of decoded metadata.
func FromMetadata(m *metadata.Metadata, info ChainInfo) (Hash, error) {
	if m.Version < 15 {
		return Hash{}, fmt.Errorf("metadata v%d cannot be committed to, v15 required", m.Version)
	}
	leaves, ext, err := Collect(m)
	if err != nil {
		return Hash{}, fmt.Errorf("collecting types: %w", err)
	}
	hashes, err := LeafHashes(leaves)
	if err != nil {
		return Hash{}, fmt.Errorf("encoding types: %w", err)
	}
	encoded, err := ext.Encode()
	if err != nil {
		return Hash{}, fmt.Errorf("encoding extrinsic metadata: %w", err)
	}
	return Digest(Root(hashes), hash(encoded), info)
}

// Build decodes raw metadata and computes its digest.
func Build(raw []byte, info ChainInfo) (Hash, error) {
	if len(raw) == 0 {
		return Hash{}, errors.New("empty metadata")
	}
	m, err := metadata.Decode(raw)
	if err != nil {
		return Hash{}, err
	}
	return FromMetadata(m, info)
}
