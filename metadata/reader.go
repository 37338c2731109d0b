package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// reader wraps a scale.Decoder with the handful of primitives the metadata
// layout is built from.
type reader struct {
	buf *bytes.Reader
	dec *scale.Decoder
}

func newReader(b []byte) *reader {
	buf := bytes.NewReader(b)
	return &reader{buf: buf, dec: scale.NewDecoder(buf)}
}

func (r *reader) remaining() int {
	return r.buf.Len()
}

func (r *reader) u8() (uint8, error) {
	return r.dec.ReadOneByte()
}

func (r *reader) u32() (uint32, error) {
	var b [4]byte
	if err := r.dec.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *reader) compactU32() (uint32, error) {
	v, err := r.dec.DecodeUintCompact()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() || v.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("compact %v overflows u32", v)
	}
	return uint32(v.Uint64()), nil
}

// length reads a Vec length prefix, bounded by the bytes left so a corrupt
// prefix cannot trigger a huge allocation.
func (r *reader) length() (int, error) {
	n, err := r.compactU32()
	if err != nil {
		return 0, err
	}
	if int64(n) > int64(r.remaining()) {
		return 0, fmt.Errorf("length %d exceeds %d remaining bytes", n, r.remaining())
	}
	return int(n), nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := r.dec.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *reader) str() (string, error) {
	b, err := r.bytes()
	return string(b), err
}

func (r *reader) strs() ([]string, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := r.str()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *reader) option() (bool, error) {
	b, err := r.u8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("invalid option byte %#x", b)
}

func (r *reader) optionStr() (*string, error) {
	some, err := r.option()
	if err != nil || !some {
		return nil, err
	}
	s, err := r.str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *reader) optionCompactU32() (*uint32, error) {
	some, err := r.option()
	if err != nil || !some {
		return nil, err
	}
	v, err := r.compactU32()
	if err != nil {
		return nil, err
	}
	return &v, nil
}
