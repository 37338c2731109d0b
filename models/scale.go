package models

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// MaxU128 is the largest value a Balance (u128) can hold.
var MaxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// EncodeCompact returns the SCALE compact encoding of v.
func EncodeCompact(v *big.Int) ([]byte, error) {
	if v == nil || v.Sign() < 0 {
		return nil, fmt.Errorf("cannot compact-encode %v", v)
	}
	var bb = bytes.Buffer{}
	err := scale.NewEncoder(&bb).EncodeUintCompact(*v)
	if err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}

// EncodeCompactUint is EncodeCompact for native integers.
func EncodeCompactUint(v uint64) []byte {
	b, _ := EncodeCompact(new(big.Int).SetUint64(v))
	return b
}

func encodeU32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func decodeCompactUint64(decoder *scale.Decoder) (uint64, error) {
	v, err := decoder.DecodeUintCompact()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("compact value %v overflows uint64", v)
	}
	return v.Uint64(), nil
}
