package metahash

import (
	"fmt"
	"sort"

	"github.com/skyvein-baas/client-skyvein-golang-api/metadata"
)

type SignedExtension struct {
	Identifier           string
	IncludedInExtrinsic  TypeRef
	IncludedInSignedData TypeRef
}

// ExtrinsicMetadata is the extrinsic section expressed in minimal type refs.
type ExtrinsicMetadata struct {
	Version          uint8
	AddressType      TypeRef
	CallType         TypeRef
	SignatureType    TypeRef
	SignedExtensions []SignedExtension
}

func (x ExtrinsicMetadata) Encode() ([]byte, error) {
	e := newEncoder()
	e.u8(x.Version)
	e.typeRef(x.AddressType)
	e.typeRef(x.CallType)
	e.typeRef(x.SignatureType)
	e.compact(uint64(len(x.SignedExtensions)))
	for _, ext := range x.SignedExtensions {
		e.str(ext.Identifier)
		e.typeRef(ext.IncludedInExtrinsic)
		e.typeRef(ext.IncludedInSignedData)
	}
	return e.bytes()
}

// converter rewrites registry types reachable from the extrinsic section
// into the minimal form.
type converter struct {
	reg     *metadata.Registry
	visited map[uint32]bool
	keep    []uint32
	ids     map[uint32]uint32
}

// Collect returns the sorted leaves and the extrinsic metadata of m.
func Collect(m *metadata.Metadata) ([]Type, ExtrinsicMetadata, error) {
	c := &converter{
		reg:     m.Registry,
		visited: map[uint32]bool{},
		ids:     map[uint32]uint32{},
	}

	x := m.Extrinsic
	roots := []uint32{x.AddressType, x.CallType, x.SignatureType}
	for _, ext := range x.SignedExtensions {
		roots = append(roots, ext.Type, ext.AdditionalSigned)
	}
	for _, id := range roots {
		if err := c.visit(id); err != nil {
			return nil, ExtrinsicMetadata{}, err
		}
	}

	sort.Slice(c.keep, func(i, j int) bool { return c.keep[i] < c.keep[j] })
	for i, id := range c.keep {
		c.ids[id] = uint32(i)
	}

	var leaves []Type
	for _, id := range c.keep {
		ts, err := c.convert(id)
		if err != nil {
			return nil, ExtrinsicMetadata{}, err
		}
		leaves = append(leaves, ts...)
	}
	sort.SliceStable(leaves, func(i, j int) bool {
		if leaves[i].ID != leaves[j].ID {
			return leaves[i].ID < leaves[j].ID
		}
		return leaves[i].Def.Variant.Index < leaves[j].Def.Variant.Index
	})

	out := ExtrinsicMetadata{Version: x.Version}
	var err error
	if out.AddressType, err = c.ref(x.AddressType); err != nil {
		return nil, out, err
	}
	if out.CallType, err = c.ref(x.CallType); err != nil {
		return nil, out, err
	}
	if out.SignatureType, err = c.ref(x.SignatureType); err != nil {
		return nil, out, err
	}
	for _, ext := range x.SignedExtensions {
		se := SignedExtension{Identifier: ext.Identifier}
		if se.IncludedInExtrinsic, err = c.ref(ext.Type); err != nil {
			return nil, out, err
		}
		if se.IncludedInSignedData, err = c.ref(ext.AdditionalSigned); err != nil {
			return nil, out, err
		}
		out.SignedExtensions = append(out.SignedExtensions, se)
	}
	return leaves, out, nil
}

func isVoid(t *metadata.Type) bool {
	switch t.Def.Kind {
	case metadata.DefComposite:
		return len(t.Def.Fields) == 0
	case metadata.DefTuple:
		return len(t.Def.Tuple) == 0
	case metadata.DefVariant:
		return len(t.Def.Variants) == 0
	}
	return false
}

// inlined types never become leaves.
func inlined(t *metadata.Type) bool {
	return t.Def.Kind == metadata.DefPrimitive || t.Def.Kind == metadata.DefCompact || isVoid(t)
}

func (c *converter) visit(id uint32) error {
	if c.visited[id] {
		return nil
	}
	c.visited[id] = true

	t, err := c.reg.Lookup(id)
	if err != nil {
		return err
	}
	if inlined(t) {
		return nil
	}
	c.keep = append(c.keep, id)

	var children []uint32
	switch t.Def.Kind {
	case metadata.DefComposite:
		for _, f := range t.Def.Fields {
			children = append(children, f.Type)
		}
	case metadata.DefVariant:
		for _, v := range t.Def.Variants {
			for _, f := range v.Fields {
				children = append(children, f.Type)
			}
		}
	case metadata.DefSequence, metadata.DefArray:
		children = append(children, t.Def.Elem)
	case metadata.DefTuple:
		children = append(children, t.Def.Tuple...)
	}
	for _, child := range children {
		if err := c.visit(child); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) ref(id uint32) (TypeRef, error) {
	t, err := c.reg.Lookup(id)
	if err != nil {
		return TypeRef{}, err
	}
	switch {
	case t.Def.Kind == metadata.DefPrimitive:
		return TypeRef{Kind: RefKind(t.Def.Prim)}, nil
	case t.Def.Kind == metadata.DefCompact:
		return c.compactRef(t.Def.Elem)
	case isVoid(t):
		return TypeRef{Kind: RefVoid}, nil
	}
	newID, ok := c.ids[id]
	if !ok {
		return TypeRef{}, fmt.Errorf("type %d was not collected", id)
	}
	return TypeRef{Kind: RefPerID, ID: newID}, nil
}

// compactRef resolves Compact<T>, looking through single-field wrappers
// such as Perbill.
func (c *converter) compactRef(id uint32) (TypeRef, error) {
	t, err := c.reg.Lookup(id)
	if err != nil {
		return TypeRef{}, err
	}
	switch {
	case t.Def.Kind == metadata.DefPrimitive:
		if t.Def.Prim < metadata.PrimU8 || t.Def.Prim > metadata.PrimU256 {
			return TypeRef{}, fmt.Errorf("compact of non-unsigned primitive %d", t.Def.Prim)
		}
		return TypeRef{Kind: RefCompactU8 + RefKind(t.Def.Prim-metadata.PrimU8)}, nil
	case isVoid(t):
		return TypeRef{Kind: RefVoid}, nil
	case t.Def.Kind == metadata.DefComposite && len(t.Def.Fields) == 1:
		return c.compactRef(t.Def.Fields[0].Type)
	case t.Def.Kind == metadata.DefTuple && len(t.Def.Tuple) == 1:
		return c.compactRef(t.Def.Tuple[0])
	}
	return TypeRef{}, fmt.Errorf("type %d cannot be compact encoded", id)
}

func (c *converter) fields(fs []metadata.Field) ([]Field, error) {
	out := make([]Field, 0, len(fs))
	for _, f := range fs {
		r, err := c.ref(f.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, Field{Name: f.Name, Type: r, TypeName: f.TypeName})
	}
	return out, nil
}

func (c *converter) convert(id uint32) ([]Type, error) {
	t, err := c.reg.Lookup(id)
	if err != nil {
		return nil, err
	}
	newID := c.ids[id]
	leaf := Type{Path: t.Path, ID: newID}

	switch t.Def.Kind {
	case metadata.DefComposite:
		leaf.Def.Kind = DefComposite
		if leaf.Def.Fields, err = c.fields(t.Def.Fields); err != nil {
			return nil, err
		}
	case metadata.DefVariant:
		out := make([]Type, 0, len(t.Def.Variants))
		for _, v := range t.Def.Variants {
			fs, err := c.fields(v.Fields)
			if err != nil {
				return nil, err
			}
			out = append(out, Type{
				Path: t.Path,
				ID:   newID,
				Def: TypeDef{
					Kind:    DefEnumeration,
					Variant: Variant{Name: v.Name, Fields: fs, Index: uint32(v.Index)},
				},
			})
		}
		return out, nil
	case metadata.DefSequence:
		leaf.Def.Kind = DefSequence
		if leaf.Def.Elem, err = c.ref(t.Def.Elem); err != nil {
			return nil, err
		}
	case metadata.DefArray:
		leaf.Def.Kind = DefArray
		leaf.Def.Len = t.Def.Len
		if leaf.Def.Elem, err = c.ref(t.Def.Elem); err != nil {
			return nil, err
		}
	case metadata.DefTuple:
		leaf.Def.Kind = DefTuple
		for _, el := range t.Def.Tuple {
			r, err := c.ref(el)
			if err != nil {
				return nil, err
			}
			leaf.Def.Tuple = append(leaf.Def.Tuple, r)
		}
	case metadata.DefBitSequence:
		leaf.Def.Kind = DefBitSequence
		if leaf.Def.NumBytes, leaf.Def.LSBFirst, err = c.bitSequence(t); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("type %d: unexpected kind %d", id, t.Def.Kind)
	}
	return []Type{leaf}, nil
}

func (c *converter) bitSequence(t *metadata.Type) (uint8, bool, error) {
	store, err := c.reg.Lookup(t.Def.BitStore)
	if err != nil {
		return 0, false, err
	}
	if store.Def.Kind != metadata.DefPrimitive {
		return 0, false, fmt.Errorf("bit store %d is not a primitive", t.Def.BitStore)
	}
	var n uint8
	switch store.Def.Prim {
	case metadata.PrimU8:
		n = 1
	case metadata.PrimU16:
		n = 2
	case metadata.PrimU32:
		n = 4
	case metadata.PrimU64:
		n = 8
	default:
		return 0, false, fmt.Errorf("unsupported bit store primitive %d", store.Def.Prim)
	}
	order, err := c.reg.Lookup(t.Def.BitOrder)
	if err != nil {
		return 0, false, err
	}
	lsb := len(order.Path) > 0 && order.Path[len(order.Path)-1] == "Lsb0"
	return n, lsb, nil
}
