package models

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// SubmissionOutcome is either Accepted (TxHash set) or Rejected (Cause set).
type SubmissionOutcome struct {
	TxHash types.Hash
	// SignedTransaction and SignedPayload hold the submitted extrinsic and the
	// exact bytes handed to the signer, when requested.
	SignedTransaction []byte
	SignedPayload     []byte
	Cause             error
}

func Accepted(txHash types.Hash, signed, payload []byte) SubmissionOutcome {
	return SubmissionOutcome{TxHash: txHash, SignedTransaction: signed, SignedPayload: payload}
}

func Rejected(cause error) SubmissionOutcome {
	return SubmissionOutcome{Cause: cause}
}

func (o SubmissionOutcome) IsAccepted() bool {
	return o.Cause == nil
}

// ExitCode is 0 for an accepted submission and 1 otherwise.
func (o SubmissionOutcome) ExitCode() int {
	if o.IsAccepted() {
		return 0
	}
	return 1
}
