package handlers

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

// fakeNode answers the JSON-RPC methods a transfer uses from canned values
// and records every call.
type fakeNode struct {
	mu    sync.Mutex
	calls []string

	metadata []byte
	// versions answers Metadata_metadata_versions; nil makes the runtime
	// API call fail.
	versions   []uint32
	properties string
	runtime    models.RuntimeVersion
	nonce      uint64
	block      uint64
	submitErr  error
	submitted  []string
	// hashed lists the block numbers chain_getBlockHash was asked for.
	hashed []uint64
	closed bool
}

func (f *fakeNode) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func hashHex(fill byte) string {
	h := make([]byte, 32)
	for i := range h {
		h[i] = fill
	}
	return hexutil.Encode(h)
}

// blockHash is distinct per block number; genesis is all 0x11.
func blockHash(n uint64) types.Hash {
	var h types.Hash
	if n == 0 {
		copy(h[:], bytes.Repeat([]byte{0x11}, len(h)))
		return h
	}
	copy(h[:], bytes.Repeat([]byte{0x22}, len(h)))
	binary.BigEndian.PutUint64(h[24:], n)
	return h
}

func (f *fakeNode) answer(method string, args []interface{}) (interface{}, error) {
	switch method {
	case "state_call":
		switch args[0] {
		case "Metadata_metadata_versions":
			if f.versions == nil {
				return nil, errors.New("-32000: Client error: Exported method Metadata_metadata_versions is not found")
			}
			out := models.EncodeCompactUint(uint64(len(f.versions)))
			for _, v := range f.versions {
				out = binary.LittleEndian.AppendUint32(out, v)
			}
			return hexutil.Encode(out), nil
		case "Metadata_metadata_at_version":
			out := append([]byte{1}, models.EncodeCompactUint(uint64(len(f.metadata)))...)
			return hexutil.Encode(append(out, f.metadata...)), nil
		}
		return nil, fmt.Errorf("unexpected runtime call %v", args[0])
	case "state_getMetadata":
		return hexutil.Encode(f.metadata), nil
	case "state_getRuntimeVersion":
		return f.runtime, nil
	case "system_properties":
		return json.RawMessage(f.properties), nil
	case "system_accountNextIndex":
		return f.nonce, nil
	case "chain_getBlockHash":
		n := args[0].(uint64)
		f.hashed = append(f.hashed, n)
		h := blockHash(n)
		return hexutil.Encode(h[:]), nil
	case "chain_getHeader":
		return Header{ParentHash: hashHex(0x21), Number: hexutil.EncodeUint64(f.block)}, nil
	case "author_submitExtrinsic":
		f.submitted = append(f.submitted, args[0].(string))
		if f.submitErr != nil {
			return nil, f.submitErr
		}
		raw, err := hexutil.Decode(args[0].(string))
		if err != nil {
			return nil, err
		}
		h := models.Hash(raw)
		return hexutil.Encode(h[:]), nil
	}
	return nil, fmt.Errorf("method %s not found", method)
}

func (f *fakeNode) Call(_ context.Context, result interface{}, method string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)

	v, err := f.answer(method, args)
	if err != nil {
		return err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, result)
}

func (f *fakeNode) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
