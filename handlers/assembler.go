package handlers

import (
	"context"
	"fmt"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/skyvein-baas/client-skyvein-golang-api/metadata"
	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

const (
	TransferPallet = "Balances"
	TransferCall   = "transfer_keep_alive"
)

// AssembleOptions carries the sender side of a transfer.
type AssembleOptions struct {
	SenderAddress string
	Tip           *big.Int
	// EraPeriod of 0 makes the transaction immortal.
	EraPeriod uint64
}

// Assembly is an unsigned transfer ready for signing.
type Assembly struct {
	Call          []byte
	Bundle        *models.SignedExtensionBundle
	AddressFormat models.AddressFormat
	Chain         *ChainState
}

// addressFormat picks MultiAddress when the runtime's address type is an enum.
func addressFormat(md *metadata.Metadata, ty uint32) models.AddressFormat {
	if md.IsEnum(ty) {
		return models.AddressMultiAddress
	}
	return models.AddressAccountID
}

// EncodeTransferCall encodes Balances.transfer_keep_alive(dest, value).
func EncodeTransferCall(md *metadata.Metadata, intent models.TransferIntent) ([]byte, error) {
	palletIndex, callIndex, fields, err := md.Call(TransferPallet, TransferCall)
	if err != nil {
		return nil, models.NewError(models.ErrAssembly, TransferPallet+"."+TransferCall, err)
	}
	if len(fields) != 2 {
		return nil, models.NewError(models.ErrAssembly, TransferCall, fmt.Errorf("expected 2 arguments, runtime declares %d", len(fields)))
	}
	if err := intent.Validate(); err != nil {
		return nil, models.NewError(models.ErrAssembly, "intent", err)
	}

	accountID, err := intent.AccountID()
	if err != nil {
		return nil, models.NewError(models.ErrAssembly, "destination", err)
	}
	dest, err := models.EncodeAddress(addressFormat(md, fields[0].Type), accountID)
	if err != nil {
		return nil, models.NewError(models.ErrAssembly, "destination", err)
	}
	value, err := models.EncodeCompact(intent.Amount)
	if err != nil {
		return nil, models.NewError(models.ErrAssembly, "amount", err)
	}

	call := []byte{palletIndex, callIndex}
	call = append(call, dest...)
	return append(call, value...), nil
}

// Assemble builds the call and the signed extension bundle of a transfer.
func Assemble(ctx context.Context, t Transport, res *Resolution, commitment *models.MetadataCommitment,
	intent models.TransferIntent, opts AssembleOptions, log logrus.FieldLogger) (*Assembly, error) {
	call, err := EncodeTransferCall(res.Metadata, intent)
	if err != nil {
		return nil, err
	}

	chain, err := GetChainState(ctx, t, opts.SenderAddress)
	if err != nil {
		return nil, models.NewError(models.ErrConnection, "chain state", err)
	}

	era := models.ImmortalEra
	checkpoint := chain.GenesisHash
	if opts.EraPeriod > 0 {
		era = models.NewMortalEra(opts.EraPeriod, chain.BlockNumber)
		// the node checks against the era's birth block, which trails the
		// current one when the phase is quantized
		checkpoint = chain.BlockHash
		if birth := era.Birth(chain.BlockNumber); birth != chain.BlockNumber {
			if checkpoint, err = ChainGetBlockHash(ctx, t, birth); err != nil {
				return nil, models.NewError(models.ErrConnection, "era birth block hash", err)
			}
		}
	}

	d := res.Descriptor
	bundle, err := models.NewSignedExtensionBundle(d.SignedExtensionIdentifiers, models.ExtensionParams{
		Nonce:              chain.Nonce,
		Tip:                opts.Tip,
		Era:                era,
		SpecVersion:        d.SpecVersion,
		TransactionVersion: d.TransactionVersion,
		GenesisHash:        chain.GenesisHash,
		BlockHash:          checkpoint,
		MetadataHash:       commitment,
	})
	if err != nil {
		return nil, models.Classify(models.ErrAssembly, "signed extensions", err)
	}

	log.WithFields(logrus.Fields{
		"nonce":        chain.Nonce,
		"block":        chain.BlockNumber,
		"era_period":   era.Period,
		"era_phase":    era.Phase,
		"with_mdhash":  commitment != nil,
		"call_length":  len(call),
		"extra_length": len(bundle.Extra()),
	}).Debug("extrinsic assembled")

	return &Assembly{
		Call:          call,
		Bundle:        bundle,
		AddressFormat: addressFormat(res.Metadata, res.Metadata.Extrinsic.AddressType),
		Chain:         chain,
	}, nil
}
