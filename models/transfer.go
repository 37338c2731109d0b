package models

import (
	"fmt"
	"math/big"
)

// TransferIntent is a keep-alive balance transfer in the smallest unit.
type TransferIntent struct {
	Destination string
	Amount      *big.Int
}

// AccountID decodes the destination address. Addresses of any network are
// accepted; the account id is what goes on chain.
func (t TransferIntent) AccountID() ([]byte, error) {
	_, id, err := SS58Decode(t.Destination)
	if err != nil {
		return nil, fmt.Errorf("destination %q: %w", t.Destination, err)
	}
	return id, nil
}

func (t TransferIntent) Validate() error {
	if t.Amount == nil || t.Amount.Sign() <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if t.Amount.Cmp(MaxU128) > 0 {
		return fmt.Errorf("amount overflows u128")
	}
	_, err := t.AccountID()
	return err
}
