package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyvein-baas/client-skyvein-golang-api/metadata"
	"github.com/skyvein-baas/client-skyvein-golang-api/metadata/metadatatest"
)

func TestDecodeV15(t *testing.T) {
	raw := metadatatest.Build(metadatatest.Options{Version: 15})

	md, err := metadata.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, uint8(15), md.Version)
	assert.Equal(t, metadatatest.DefaultExtensions(), md.SignedExtensionIdentifiers())
	assert.Equal(t, metadatatest.TypeMultiAddress, md.Extrinsic.AddressType)
	assert.Equal(t, metadatatest.TypeRuntimeCall, md.Extrinsic.CallType)
	assert.Equal(t, metadatatest.TypeMultiSignature, md.Extrinsic.SignatureType)
	assert.Equal(t, metadatatest.TypeExtra, md.Extrinsic.ExtraType)
	assert.Nil(t, md.Extrinsic.Type)

	require.Len(t, md.Pallets, 2)
	assert.Equal(t, "System", md.Pallets[0].Name)
	assert.Equal(t, "Balances", md.Pallets[1].Name)
	assert.Equal(t, metadatatest.DefaultBalancesIndex, md.Pallets[1].Index)

	v, err := metadata.Version(raw)
	require.NoError(t, err)
	assert.Equal(t, uint8(15), v)
}

func TestDecodeV14(t *testing.T) {
	raw := metadatatest.Build(metadatatest.Options{
		Version:          14,
		SignedExtensions: metadatatest.LegacyExtensions(),
	})

	md, err := metadata.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, uint8(14), md.Version)
	assert.Equal(t, metadatatest.LegacyExtensions(), md.SignedExtensionIdentifiers())

	// taken from the UncheckedExtrinsic type parameters
	require.NotNil(t, md.Extrinsic.Type)
	assert.Equal(t, metadatatest.TypeUncheckedExtrinsic, *md.Extrinsic.Type)
	assert.Equal(t, metadatatest.TypeMultiAddress, md.Extrinsic.AddressType)
	assert.Equal(t, metadatatest.TypeRuntimeCall, md.Extrinsic.CallType)
	assert.Equal(t, metadatatest.TypeMultiSignature, md.Extrinsic.SignatureType)
	assert.Equal(t, metadatatest.TypeExtra, md.Extrinsic.ExtraType)
}

func TestCall(t *testing.T) {
	md, err := metadata.Decode(metadatatest.Build(metadatatest.Options{BalancesIndex: 5}))
	require.NoError(t, err)

	pallet, call, fields, err := md.Call("Balances", "transfer_keep_alive")
	require.NoError(t, err)
	assert.Equal(t, uint8(5), pallet)
	assert.Equal(t, metadatatest.TransferKeepAliveCall, call)
	require.Len(t, fields, 2)
	require.NotNil(t, fields[0].Name)
	assert.Equal(t, "dest", *fields[0].Name)
	assert.True(t, md.IsEnum(fields[0].Type))
	assert.Equal(t, metadatatest.TypeCompactU128, fields[1].Type)

	_, _, _, err = md.Call("Balances", "transfer_all")
	assert.Error(t, err)
	_, _, _, err = md.Call("Assets", "transfer")
	assert.Error(t, err)
}

func TestCallAccountIDAddress(t *testing.T) {
	md, err := metadata.Decode(metadatatest.Build(metadatatest.Options{AccountIDAddress: true}))
	require.NoError(t, err)

	_, _, fields, err := md.Call("Balances", "transfer_keep_alive")
	require.NoError(t, err)
	assert.False(t, md.IsEnum(fields[0].Type))
	assert.False(t, md.IsEnum(md.Extrinsic.AddressType))
}

func TestRegistry(t *testing.T) {
	md, err := metadata.Decode(metadatatest.Build(metadatatest.Options{}))
	require.NoError(t, err)

	ty, err := md.Registry.Lookup(metadatatest.TypeMultiAddress)
	require.NoError(t, err)
	assert.Equal(t, []string{"sp_runtime", "multiaddress", "MultiAddress"}, ty.Path)
	id, ok := ty.Param("AccountId")
	require.True(t, ok)
	assert.Equal(t, metadatatest.TypeAccountID, id)
	_, ok = ty.Param("AccountIndex")
	assert.False(t, ok)

	arr, err := md.Registry.Lookup(metadatatest.TypeAccountBytes)
	require.NoError(t, err)
	assert.Equal(t, metadata.DefArray, arr.Def.Kind)
	assert.Equal(t, uint32(32), arr.Def.Len)

	bits, err := md.Registry.Lookup(metadatatest.TypeBitVec)
	require.NoError(t, err)
	assert.Equal(t, metadata.DefBitSequence, bits.Def.Kind)
	assert.Equal(t, metadatatest.TypeLsb0, bits.Def.BitOrder)

	_, err = md.Registry.Lookup(10_000)
	assert.Error(t, err)
}

func TestDecodeErrors(t *testing.T) {
	raw := metadatatest.Build(metadatatest.Options{})

	_, err := metadata.Decode(nil)
	assert.Error(t, err)

	bad := append([]byte("atem"), raw[4:]...)
	_, err = metadata.Decode(bad)
	assert.Error(t, err)

	old := append([]byte{}, raw...)
	old[4] = 13
	_, err = metadata.Decode(old)
	assert.ErrorIs(t, err, metadata.ErrUnsupportedVersion)

	for _, n := range []int{5, 40, len(raw) / 2} {
		_, err = metadata.Decode(raw[:n])
		assert.Error(t, err, "truncated to %d bytes", n)
	}
}
