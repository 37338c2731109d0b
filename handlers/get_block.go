package handlers

import (
	"context"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Header is the part of chain_getHeader the era computation needs.
type Header struct {
	ParentHash string `json:"parentHash"`
	Number     string `json:"number"`
}

// ChainState is the ambient chain state a transfer is built against.
type ChainState struct {
	Nonce       uint64
	GenesisHash types.Hash
	BlockNumber uint64
	BlockHash   types.Hash
}

func decodeHash(s string) (types.Hash, error) {
	var h types.Hash
	b, err := hexutil.Decode(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("hash has %d bytes", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// ChainGetBlockHash returns the hash of block number n.
func ChainGetBlockHash(ctx context.Context, t Transport, n uint64) (types.Hash, error) {
	var res string
	if err := t.Call(ctx, &res, "chain_getBlockHash", n); err != nil {
		return types.Hash{}, err
	}
	return decodeHash(res)
}

// ChainGetHeader returns the best block header and its number.
func ChainGetHeader(ctx context.Context, t Transport) (*Header, uint64, error) {
	var h Header
	if err := t.Call(ctx, &h, "chain_getHeader"); err != nil {
		return nil, 0, err
	}
	n, err := hexutil.DecodeUint64(h.Number)
	if err != nil {
		return nil, 0, fmt.Errorf("header number %q: %w", h.Number, err)
	}
	return &h, n, nil
}

// AccountNextIndex returns the next nonce of address, pending pool included.
func AccountNextIndex(ctx context.Context, t Transport, address string) (uint64, error) {
	var nonce uint64
	if err := t.Call(ctx, &nonce, "system_accountNextIndex", address); err != nil {
		return 0, err
	}
	return nonce, nil
}

// GetChainState reads the nonce of address, genesis and the current block.
func GetChainState(ctx context.Context, t Transport, address string) (*ChainState, error) {
	var (
		s   ChainState
		err error
	)
	if s.Nonce, err = AccountNextIndex(ctx, t, address); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	if s.GenesisHash, err = ChainGetBlockHash(ctx, t, 0); err != nil {
		return nil, fmt.Errorf("genesis hash: %w", err)
	}
	if _, s.BlockNumber, err = ChainGetHeader(ctx, t); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if s.BlockHash, err = ChainGetBlockHash(ctx, t, s.BlockNumber); err != nil {
		return nil, fmt.Errorf("block hash: %w", err)
	}
	return &s, nil
}
