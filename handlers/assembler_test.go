package handlers

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyvein-baas/client-skyvein-golang-api/metadata"
	"github.com/skyvein-baas/client-skyvein-golang-api/metadata/metadatatest"
	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

func TestEncodeTransferCallAccountID(t *testing.T) {
	md, err := metadata.Decode(metadatatest.Build(metadatatest.Options{AccountIDAddress: true, BalancesIndex: 5}))
	require.NoError(t, err)

	call, err := EncodeTransferCall(md, models.TransferIntent{Destination: bobAddress, Amount: big.NewInt(1)})
	require.NoError(t, err)

	_, bob, err := models.SS58Decode(bobAddress)
	require.NoError(t, err)
	want := append([]byte{5, metadatatest.TransferKeepAliveCall}, bob...)
	assert.Equal(t, append(want, 0x04), call)
}

func TestEncodeTransferCallInvalid(t *testing.T) {
	md, err := metadata.Decode(metadatatest.Build(metadatatest.Options{}))
	require.NoError(t, err)

	_, err = EncodeTransferCall(md, models.TransferIntent{Destination: bobAddress, Amount: big.NewInt(0)})
	assert.True(t, errors.Is(err, models.ErrAssembly))

	_, err = EncodeTransferCall(md, models.TransferIntent{Destination: "bob", Amount: big.NewInt(1)})
	assert.True(t, errors.Is(err, models.ErrAssembly))
}

func TestAssemble(t *testing.T) {
	node := enjinNode()
	ctx := context.Background()
	res, err := ResolveDescriptor(ctx, node, testLogger())
	require.NoError(t, err)

	intent := models.TransferIntent{Destination: bobAddress, Amount: big.NewInt(10)}
	asm, err := Assemble(ctx, node, res, nil, intent, AssembleOptions{
		SenderAddress: aliceAddress,
		Tip:           big.NewInt(5),
		EraPeriod:     128,
	}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, models.AddressMultiAddress, asm.AddressFormat)
	assert.Equal(t, metadatatest.DefaultExtensions(), asm.Bundle.Identifiers())
	assert.Equal(t, uint64(9), asm.Bundle.Params.Nonce)
	assert.Equal(t, models.NewMortalEra(128, 123456), asm.Bundle.Params.Era)
	assert.Equal(t, asm.Chain.BlockHash, asm.Bundle.Params.BlockHash)
	assert.NotEqual(t, asm.Chain.GenesisHash, asm.Chain.BlockHash)
	assert.Nil(t, asm.Bundle.Params.MetadataHash)
	assert.Equal(t, uint32(1060), asm.Bundle.Params.SpecVersion)

	// the chain lists CheckMetadataHash, so its bytes are still present
	extra := asm.Bundle.Extra()
	assert.Equal(t, byte(models.CheckMetadataModeDisabled), extra[len(extra)-1])
}

func TestAssembleLongEraCheckpoint(t *testing.T) {
	tests := []struct {
		name   string
		block  uint64
		period uint64
		birth  uint64
	}{
		// quantize factor 4: phase 8769 rounds down to 8768
		{"unaligned", 123457, 16384, 123456},
		{"aligned", 123456, 16384, 123456},
		// quantize factor 16
		{"max period", 200015, 65536, 200000},
		{"short period", 123457, 64, 123457},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := enjinNode()
			node.block = tt.block
			ctx := context.Background()
			res, err := ResolveDescriptor(ctx, node, testLogger())
			require.NoError(t, err)

			intent := models.TransferIntent{Destination: bobAddress, Amount: big.NewInt(10)}
			asm, err := Assemble(ctx, node, res, nil, intent, AssembleOptions{
				SenderAddress: aliceAddress,
				EraPeriod:     tt.period,
			}, testLogger())
			require.NoError(t, err)

			era := asm.Bundle.Params.Era
			assert.Equal(t, tt.birth, era.Birth(tt.block))
			assert.Equal(t, blockHash(tt.birth), asm.Bundle.Params.BlockHash)
			assert.Equal(t, blockHash(tt.block), asm.Chain.BlockHash)
			assert.Contains(t, node.hashed, tt.birth)
		})
	}
}

func TestAssembleBirthHashUnavailable(t *testing.T) {
	node := enjinNode()
	node.block = 123457
	ctx := context.Background()
	res, err := ResolveDescriptor(ctx, node, testLogger())
	require.NoError(t, err)

	failing := &failingHashNode{fakeNode: node, fail: 123456}
	intent := models.TransferIntent{Destination: bobAddress, Amount: big.NewInt(10)}
	_, err = Assemble(ctx, failing, res, nil, intent, AssembleOptions{
		SenderAddress: aliceAddress,
		EraPeriod:     16384,
	}, testLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConnection))
}

// failingHashNode refuses chain_getBlockHash for one block number.
type failingHashNode struct {
	*fakeNode
	fail uint64
}

func (f *failingHashNode) Call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if method == "chain_getBlockHash" && args[0] == f.fail {
		return errors.New("-32000: block pruned")
	}
	return f.fakeNode.Call(ctx, result, method, args...)
}
