package handlers

import (
	"context"
	"errors"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

// Submitter signs an assembled transfer and submits it once.
type Submitter struct {
	Transport Transport
	Log       logrus.FieldLogger
	// WithSignedTransaction keeps the signed extrinsic and the signed payload
	// in the outcome.
	WithSignedTransaction bool
}

// Sign encodes and signs the assembly, then checks that the encoded
// extrinsic decodes back to the bundle under the runtime's extension order.
func (s *Submitter) Sign(asm *Assembly, signer models.Signer, identifiers []string) (encoded, payload []byte, err error) {
	ext := models.NewExtrinsic(asm.Call)
	payload, err = ext.Sign(signer, asm.Bundle, asm.AddressFormat)
	if err != nil {
		return nil, nil, models.NewError(models.ErrSigning, "", err)
	}
	encoded, err = ext.Bytes()
	if err != nil {
		return nil, nil, models.NewError(models.ErrAssembly, "extrinsic", err)
	}
	if err := models.SelfCheck(encoded, asm.Bundle, identifiers, asm.AddressFormat); err != nil {
		return nil, nil, models.NewError(models.ErrAssembly, "signed extensions", err)
	}
	return encoded, payload, nil
}

// Submit signs and submits the assembly. There is no retry: a rejected
// submission is terminal.
func (s *Submitter) Submit(ctx context.Context, asm *Assembly, signer models.Signer, identifiers []string) models.SubmissionOutcome {
	encoded, payload, err := s.Sign(asm, signer, identifiers)
	if err != nil {
		return models.Rejected(err)
	}

	local := types.Hash(models.Hash(encoded))
	s.Log.WithFields(logrus.Fields{
		"length":  len(encoded),
		"tx_hash": hexutil.Encode(local[:]),
	}).Info("submitting extrinsic")

	var res string
	if err := s.Transport.Call(ctx, &res, "author_submitExtrinsic", hexutil.Encode(encoded)); err != nil {
		return models.Rejected(models.NewError(models.ErrSubmission, "author_submitExtrinsic", err))
	}

	txHash, err := decodeHash(res)
	if err != nil {
		return models.Rejected(models.NewError(models.ErrSubmission, "tx hash", errors.New("node returned "+res)))
	}
	if txHash != local {
		s.Log.WithFields(logrus.Fields{
			"node":  hexutil.Encode(txHash[:]),
			"local": hexutil.Encode(local[:]),
		}).Warn("node reported a different transaction hash")
	}

	if !s.WithSignedTransaction {
		encoded, payload = nil, nil
	}
	return models.Accepted(txHash, encoded, payload)
}
