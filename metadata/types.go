// Package metadata decodes the runtime metadata a Substrate node describes
// itself with (RuntimeMetadataPrefixed, versions 14 and 15).
package metadata

import "fmt"

const (
	// MagicNumber is "meta" in little endian.
	MagicNumber uint32 = 0x6174656d

	MinVersion = 14
	MaxVersion = 15
)

// DefKind is the scale-info TypeDef discriminant.
type DefKind uint8

const (
	DefComposite DefKind = iota
	DefVariant
	DefSequence
	DefArray
	DefTuple
	DefPrimitive
	DefCompact
	DefBitSequence
)

// Primitive is the scale-info TypeDefPrimitive discriminant.
type Primitive uint8

const (
	PrimBool Primitive = iota
	PrimChar
	PrimStr
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimU128
	PrimU256
	PrimI8
	PrimI16
	PrimI32
	PrimI64
	PrimI128
	PrimI256
)

type TypeParam struct {
	Name string
	Type *uint32
}

type Field struct {
	Name     *string
	Type     uint32
	TypeName *string
}

type Variant struct {
	Name   string
	Fields []Field
	Index  uint8
}

// TypeDef holds the definition of one registry type; which fields are set
// depends on Kind.
type TypeDef struct {
	Kind DefKind

	Fields   []Field   // composite
	Variants []Variant // variant
	Elem     uint32    // sequence, array, compact
	Len      uint32    // array
	Tuple    []uint32  // tuple
	Prim     Primitive // primitive

	BitStore uint32 // bit sequence
	BitOrder uint32
}

type Type struct {
	ID     uint32
	Path   []string
	Params []TypeParam
	Def    TypeDef
}

// Registry is the portable type registry, in registry order.
type Registry struct {
	Types []Type
	byID  map[uint32]int
}

func NewRegistry(types []Type) *Registry {
	r := &Registry{Types: types, byID: make(map[uint32]int, len(types))}
	for i, t := range types {
		r.byID[t.ID] = i
	}
	return r
}

func (r *Registry) Lookup(id uint32) (*Type, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("type %d not in registry", id)
	}
	return &r.Types[i], nil
}

// Param returns the id bound to the named type parameter.
func (t *Type) Param(name string) (uint32, bool) {
	for _, p := range t.Params {
		if p.Name == name && p.Type != nil {
			return *p.Type, true
		}
	}
	return 0, false
}

// Variant returns the named variant of an enum type.
func (t *Type) Variant(name string) (*Variant, bool) {
	if t.Def.Kind != DefVariant {
		return nil, false
	}
	for i := range t.Def.Variants {
		if t.Def.Variants[i].Name == name {
			return &t.Def.Variants[i], true
		}
	}
	return nil, false
}

type Pallet struct {
	Name  string
	Index uint8
	Calls *uint32
}

type SignedExtension struct {
	Identifier       string
	Type             uint32
	AdditionalSigned uint32
}

// Extrinsic describes how extrinsics are shaped. For V14 the address, call,
// signature and extra types come from the type parameters of Type.
type Extrinsic struct {
	Version          uint8
	Type             *uint32
	AddressType      uint32
	CallType         uint32
	SignatureType    uint32
	ExtraType        uint32
	SignedExtensions []SignedExtension
}

type Metadata struct {
	Version   uint8
	Registry  *Registry
	Pallets   []Pallet
	Extrinsic Extrinsic
}

// SignedExtensionIdentifiers lists the signed extensions in runtime order.
func (m *Metadata) SignedExtensionIdentifiers() []string {
	ids := make([]string, len(m.Extrinsic.SignedExtensions))
	for i, ext := range m.Extrinsic.SignedExtensions {
		ids[i] = ext.Identifier
	}
	return ids
}

func (m *Metadata) Pallet(name string) (*Pallet, bool) {
	for i := range m.Pallets {
		if m.Pallets[i].Name == name {
			return &m.Pallets[i], true
		}
	}
	return nil, false
}

// Call locates a dispatchable and returns its pallet index, call index and
// argument fields.
func (m *Metadata) Call(pallet, call string) (palletIndex, callIndex uint8, fields []Field, err error) {
	p, ok := m.Pallet(pallet)
	if !ok {
		err = fmt.Errorf("pallet %s not found", pallet)
		return
	}
	if p.Calls == nil {
		err = fmt.Errorf("pallet %s has no calls", pallet)
		return
	}
	t, err := m.Registry.Lookup(*p.Calls)
	if err != nil {
		return
	}
	v, ok := t.Variant(call)
	if !ok {
		err = fmt.Errorf("call %s.%s not found", pallet, call)
		return
	}
	return p.Index, v.Index, v.Fields, nil
}

// IsEnum reports whether id resolves to a variant type, e.g. MultiAddress.
func (m *Metadata) IsEnum(id uint32) bool {
	t, err := m.Registry.Lookup(id)
	return err == nil && t.Def.Kind == DefVariant
}
