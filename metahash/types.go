// Package metahash computes the metadata digest committed to by the
// CheckMetadataHash signed extension: a blake3 Merkle root over a minimal
// form of the type registry, bound to the chain identity.
package metahash

import (
	"bytes"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// RefKind is the TypeRef discriminant.
type RefKind uint8

const (
	RefBool RefKind = iota
	RefChar
	RefStr
	RefU8
	RefU16
	RefU32
	RefU64
	RefU128
	RefU256
	RefI8
	RefI16
	RefI32
	RefI64
	RefI128
	RefI256
	RefCompactU8
	RefCompactU16
	RefCompactU32
	RefCompactU64
	RefCompactU128
	RefCompactU256
	RefVoid
	RefPerID
)

// TypeRef points at a type. Primitives and compacts are inlined; everything
// else is referenced by its position in the minimal registry.
type TypeRef struct {
	Kind RefKind
	ID   uint32
}

type Field struct {
	Name     *string
	Type     TypeRef
	TypeName *string
}

type Variant struct {
	Name   string
	Fields []Field
	Index  uint32
}

// DefKind is the minimal TypeDef discriminant.
type DefKind uint8

const (
	DefComposite DefKind = iota
	DefEnumeration
	DefSequence
	DefArray
	DefTuple
	DefBitSequence
)

type TypeDef struct {
	Kind DefKind

	Fields   []Field
	Variant  Variant
	Elem     TypeRef
	Len      uint32
	Tuple    []TypeRef
	NumBytes uint8
	LSBFirst bool
}

// Type is one leaf of the tree. An enum contributes one Type per variant,
// all sharing the same ID.
type Type struct {
	Path []string
	Def  TypeDef
	ID   uint32
}

// encoder collects SCALE output; the first write error sticks.
type encoder struct {
	buf bytes.Buffer
	enc *scale.Encoder
	err error
}

func newEncoder() *encoder {
	e := &encoder{}
	e.enc = scale.NewEncoder(&e.buf)
	return e
}

func (e *encoder) bytes() ([]byte, error) {
	return e.buf.Bytes(), e.err
}

func (e *encoder) write(b []byte) {
	if e.err == nil {
		e.err = e.enc.Write(b)
	}
}

func (e *encoder) u8(b uint8) {
	if e.err == nil {
		e.err = e.enc.PushByte(b)
	}
}

func (e *encoder) bool(b bool) {
	if b {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) u16(v uint16) {
	e.write([]byte{byte(v), byte(v >> 8)})
}

func (e *encoder) u32(v uint32) {
	e.write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func (e *encoder) compact(v uint64) {
	if e.err == nil {
		e.err = e.enc.EncodeUintCompact(*new(big.Int).SetUint64(v))
	}
}

func (e *encoder) str(s string) {
	e.compact(uint64(len(s)))
	e.write([]byte(s))
}

func (e *encoder) strs(ss []string) {
	e.compact(uint64(len(ss)))
	for _, s := range ss {
		e.str(s)
	}
}

func (e *encoder) optionStr(s *string) {
	if s == nil {
		e.u8(0)
		return
	}
	e.u8(1)
	e.str(*s)
}

func (e *encoder) typeRef(r TypeRef) {
	e.u8(uint8(r.Kind))
	if r.Kind == RefPerID {
		e.compact(uint64(r.ID))
	}
}

func (e *encoder) fields(fs []Field) {
	e.compact(uint64(len(fs)))
	for _, f := range fs {
		e.optionStr(f.Name)
		e.typeRef(f.Type)
		e.optionStr(f.TypeName)
	}
}

func (e *encoder) typeDef(d TypeDef) {
	e.u8(uint8(d.Kind))
	switch d.Kind {
	case DefComposite:
		e.fields(d.Fields)
	case DefEnumeration:
		e.str(d.Variant.Name)
		e.fields(d.Variant.Fields)
		e.compact(uint64(d.Variant.Index))
	case DefSequence:
		e.typeRef(d.Elem)
	case DefArray:
		e.u32(d.Len)
		e.typeRef(d.Elem)
	case DefTuple:
		e.compact(uint64(len(d.Tuple)))
		for _, r := range d.Tuple {
			e.typeRef(r)
		}
	case DefBitSequence:
		e.u8(d.NumBytes)
		e.bool(d.LSBFirst)
	}
}

// Encode returns the SCALE encoding of the leaf.
func (t Type) Encode() ([]byte, error) {
	e := newEncoder()
	e.strs(t.Path)
	e.typeDef(t.Def)
	e.compact(uint64(t.ID))
	return e.bytes()
}
