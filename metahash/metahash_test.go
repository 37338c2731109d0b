package metahash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"

	"github.com/skyvein-baas/client-skyvein-golang-api/metadata"
	"github.com/skyvein-baas/client-skyvein-golang-api/metadata/metadatatest"
	"github.com/skyvein-baas/client-skyvein-golang-api/metahash"
)

var enjin = metahash.ChainInfo{
	SpecVersion:  1060,
	SpecName:     "enjin-relay",
	Base58Prefix: 2135,
	Decimals:     18,
	TokenSymbol:  "ENJ",
}

func pair(l, r metahash.Hash) metahash.Hash {
	return blake3.Sum256(append(append([]byte{}, l[:]...), r[:]...))
}

func TestRoot(t *testing.T) {
	a, b, c := metahash.Hash{1}, metahash.Hash{2}, metahash.Hash{3}

	assert.Equal(t, metahash.Hash{}, metahash.Root(nil))
	assert.Equal(t, a, metahash.Root([]metahash.Hash{a}))
	assert.Equal(t, pair(a, b), metahash.Root([]metahash.Hash{a, b}))
	// the last two leaves are paired first and their parent moves to the front
	assert.Equal(t, pair(pair(b, c), a), metahash.Root([]metahash.Hash{a, b, c}))

	d := metahash.Hash{4}
	assert.Equal(t, pair(pair(a, b), pair(c, d)), metahash.Root([]metahash.Hash{a, b, c, d}))
}

func TestTypeEncode(t *testing.T) {
	leaf := metahash.Type{
		Path: []string{"a"},
		Def: metahash.TypeDef{
			Kind:   metahash.DefComposite,
			Fields: []metahash.Field{{Type: metahash.TypeRef{Kind: metahash.RefU8}}},
		},
		ID: 3,
	}
	b, err := leaf.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x04, 0x04, 'a', // path
		0x00,             // composite
		0x04,             // one field
		0x00, 0x03, 0x00, // no name, u8, no type name
		0x0c, // type id 3
	}, b)

	variant := metahash.Type{
		Def: metahash.TypeDef{
			Kind: metahash.DefEnumeration,
			Variant: metahash.Variant{
				Name:   "Id",
				Fields: []metahash.Field{{Type: metahash.TypeRef{Kind: metahash.RefPerID, ID: 1}}},
				Index:  0,
			},
		},
		ID: 2,
	}
	b, err = variant.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00,           // empty path
		0x01,           // enumeration
		0x08, 'I', 'd', // name
		0x04, 0x00, 0x16, 0x04, 0x00, // field: per id 1
		0x00, // variant index
		0x08, // type id 2
	}, b)
}

func TestCollect(t *testing.T) {
	md, err := metadata.Decode(metadatatest.Build(metadatatest.Options{}))
	require.NoError(t, err)

	leaves, ext, err := metahash.Collect(md)
	require.NoError(t, err)
	// 18 reachable types, 8 of them enums with two variants each
	assert.Len(t, leaves, 26)
	for i := 1; i < len(leaves); i++ {
		prev, cur := leaves[i-1], leaves[i]
		assert.True(t, prev.ID < cur.ID || (prev.ID == cur.ID && prev.Def.Variant.Index < cur.Def.Variant.Index),
			"leaf %d out of order", i)
	}

	perID := func(id uint32) metahash.TypeRef { return metahash.TypeRef{Kind: metahash.RefPerID, ID: id} }
	assert.Equal(t, metadatatest.ExtrinsicVersion, ext.Version)
	assert.Equal(t, perID(2), ext.AddressType)
	assert.Equal(t, perID(6), ext.CallType)
	assert.Equal(t, perID(8), ext.SignatureType)
	require.Len(t, ext.SignedExtensions, len(metadatatest.DefaultExtensions()))

	byName := map[string]metahash.SignedExtension{}
	for _, se := range ext.SignedExtensions {
		byName[se.Identifier] = se
	}
	void := metahash.TypeRef{Kind: metahash.RefVoid}
	assert.Equal(t, void, byName["CheckSpecVersion"].IncludedInExtrinsic)
	assert.Equal(t, metahash.TypeRef{Kind: metahash.RefU32}, byName["CheckSpecVersion"].IncludedInSignedData)
	assert.Equal(t, perID(11), byName["CheckNonce"].IncludedInExtrinsic)
	assert.Equal(t, void, byName["CheckNonce"].IncludedInSignedData)
	assert.Equal(t, perID(15), byName["CheckMetadataHash"].IncludedInSignedData)

	var nonce, bitvec *metahash.Type
	for i := range leaves {
		switch leaves[i].ID {
		case 11:
			nonce = &leaves[i]
		case 17:
			bitvec = &leaves[i]
		}
	}
	require.NotNil(t, nonce)
	require.Len(t, nonce.Def.Fields, 1)
	assert.Equal(t, metahash.TypeRef{Kind: metahash.RefCompactU32}, nonce.Def.Fields[0].Type)

	require.NotNil(t, bitvec)
	assert.Equal(t, metahash.DefBitSequence, bitvec.Def.Kind)
	assert.Equal(t, uint8(1), bitvec.Def.NumBytes)
	assert.True(t, bitvec.Def.LSBFirst)
}

func TestBuildDeterministic(t *testing.T) {
	raw := metadatatest.Build(metadatatest.Options{})

	first, err := metahash.Build(raw, enjin)
	require.NoError(t, err)
	second, err := metahash.Build(append([]byte{}, raw...), enjin)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEqual(t, metahash.Hash{}, first)
}

func TestBuildBindsChainIdentity(t *testing.T) {
	raw := metadatatest.Build(metadatatest.Options{})
	base, err := metahash.Build(raw, enjin)
	require.NoError(t, err)

	variants := []func(*metahash.ChainInfo){
		func(c *metahash.ChainInfo) { c.SpecVersion++ },
		func(c *metahash.ChainInfo) { c.SpecName = "enjin-matrix" },
		func(c *metahash.ChainInfo) { c.Base58Prefix = 1110 },
		func(c *metahash.ChainInfo) { c.Decimals = 12 },
		func(c *metahash.ChainInfo) { c.TokenSymbol = "CENJ" },
	}
	for i, change := range variants {
		info := enjin
		change(&info)
		got, err := metahash.Build(raw, info)
		require.NoError(t, err)
		assert.NotEqual(t, base, got, "change %d", i)
	}

	other, err := metahash.Build(metadatatest.Build(metadatatest.Options{BalancesIndex: 4}), enjin)
	require.NoError(t, err)
	assert.NotEqual(t, base, other)
}

func TestBuildErrors(t *testing.T) {
	raw := metadatatest.Build(metadatatest.Options{})

	_, err := metahash.Build(nil, enjin)
	assert.Error(t, err)

	_, err = metahash.Build(raw[:len(raw)/3], enjin)
	assert.Error(t, err)

	info := enjin
	info.Decimals = 256
	_, err = metahash.Build(raw, info)
	assert.Error(t, err)

	v14 := metadatatest.Build(metadatatest.Options{Version: 14})
	_, err = metahash.Build(v14, enjin)
	assert.Error(t, err)
}
