package metadata

import (
	"errors"
	"fmt"
)

var ErrUnsupportedVersion = errors.New("unsupported metadata version")

// Decode parses a RuntimeMetadataPrefixed blob. Only the sections needed to
// build and commit to a transaction are interpreted: the type registry,
// the pallets and the extrinsic description. Trailing sections (runtime
// type, runtime APIs, outer enums, custom values) are not read.
func Decode(raw []byte) (*Metadata, error) {
	r := newReader(raw)

	magic, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("magic number: %w", err)
	}
	if magic != MagicNumber {
		return nil, fmt.Errorf("bad magic number %#x", magic)
	}
	version, err := r.u8()
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if version < MinVersion || version > MaxVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	m := &Metadata{Version: version}
	types, err := decodeRegistry(r)
	if err != nil {
		return nil, fmt.Errorf("type registry: %w", err)
	}
	m.Registry = NewRegistry(types)

	m.Pallets, err = decodePallets(r, version)
	if err != nil {
		return nil, fmt.Errorf("pallets: %w", err)
	}

	if version == 14 {
		err = decodeExtrinsicV14(r, m)
	} else {
		err = decodeExtrinsicV15(r, m)
	}
	if err != nil {
		return nil, fmt.Errorf("extrinsic: %w", err)
	}
	return m, nil
}

// Version reads only the prefix of a metadata blob.
func Version(raw []byte) (uint8, error) {
	r := newReader(raw)
	magic, err := r.u32()
	if err != nil {
		return 0, err
	}
	if magic != MagicNumber {
		return 0, fmt.Errorf("bad magic number %#x", magic)
	}
	return r.u8()
}

func decodeRegistry(r *reader) ([]Type, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	types := make([]Type, 0, n)
	for i := 0; i < n; i++ {
		var t Type
		t.ID, err = r.compactU32()
		if err != nil {
			return nil, err
		}
		t.Path, err = r.strs()
		if err != nil {
			return nil, fmt.Errorf("type %d path: %w", t.ID, err)
		}
		t.Params, err = decodeTypeParams(r)
		if err != nil {
			return nil, fmt.Errorf("type %d params: %w", t.ID, err)
		}
		t.Def, err = decodeTypeDef(r)
		if err != nil {
			return nil, fmt.Errorf("type %d def: %w", t.ID, err)
		}
		// docs
		if _, err = r.strs(); err != nil {
			return nil, fmt.Errorf("type %d docs: %w", t.ID, err)
		}
		types = append(types, t)
	}
	return types, nil
}

func decodeTypeParams(r *reader) ([]TypeParam, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	params := make([]TypeParam, 0, n)
	for i := 0; i < n; i++ {
		var p TypeParam
		p.Name, err = r.str()
		if err != nil {
			return nil, err
		}
		p.Type, err = r.optionCompactU32()
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func decodeFields(r *reader) ([]Field, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		var f Field
		f.Name, err = r.optionStr()
		if err != nil {
			return nil, err
		}
		f.Type, err = r.compactU32()
		if err != nil {
			return nil, err
		}
		f.TypeName, err = r.optionStr()
		if err != nil {
			return nil, err
		}
		if _, err = r.strs(); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func decodeTypeDef(r *reader) (def TypeDef, err error) {
	kind, err := r.u8()
	if err != nil {
		return
	}
	def.Kind = DefKind(kind)
	switch def.Kind {
	case DefComposite:
		def.Fields, err = decodeFields(r)
	case DefVariant:
		var n int
		n, err = r.length()
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			var v Variant
			v.Name, err = r.str()
			if err != nil {
				return
			}
			v.Fields, err = decodeFields(r)
			if err != nil {
				return
			}
			v.Index, err = r.u8()
			if err != nil {
				return
			}
			if _, err = r.strs(); err != nil {
				return
			}
			def.Variants = append(def.Variants, v)
		}
	case DefSequence, DefCompact:
		def.Elem, err = r.compactU32()
	case DefArray:
		def.Len, err = r.u32()
		if err != nil {
			return
		}
		def.Elem, err = r.compactU32()
	case DefTuple:
		var n int
		n, err = r.length()
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			var id uint32
			id, err = r.compactU32()
			if err != nil {
				return
			}
			def.Tuple = append(def.Tuple, id)
		}
	case DefPrimitive:
		var p uint8
		p, err = r.u8()
		if err == nil && Primitive(p) > PrimI256 {
			err = fmt.Errorf("unknown primitive %d", p)
		}
		def.Prim = Primitive(p)
	case DefBitSequence:
		def.BitStore, err = r.compactU32()
		if err != nil {
			return
		}
		def.BitOrder, err = r.compactU32()
	default:
		err = fmt.Errorf("unknown type def %d", kind)
	}
	return
}

func decodePallets(r *reader, version uint8) ([]Pallet, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	pallets := make([]Pallet, 0, n)
	for i := 0; i < n; i++ {
		var p Pallet
		p.Name, err = r.str()
		if err != nil {
			return nil, err
		}
		if err = skipStorage(r); err != nil {
			return nil, fmt.Errorf("%s storage: %w", p.Name, err)
		}
		p.Calls, err = r.optionCompactU32()
		if err != nil {
			return nil, fmt.Errorf("%s calls: %w", p.Name, err)
		}
		// event
		if _, err = r.optionCompactU32(); err != nil {
			return nil, fmt.Errorf("%s event: %w", p.Name, err)
		}
		if err = skipConstants(r); err != nil {
			return nil, fmt.Errorf("%s constants: %w", p.Name, err)
		}
		// error
		if _, err = r.optionCompactU32(); err != nil {
			return nil, fmt.Errorf("%s error: %w", p.Name, err)
		}
		p.Index, err = r.u8()
		if err != nil {
			return nil, err
		}
		if version >= 15 {
			if _, err = r.strs(); err != nil {
				return nil, fmt.Errorf("%s docs: %w", p.Name, err)
			}
		}
		pallets = append(pallets, p)
	}
	return pallets, nil
}

func skipStorage(r *reader) error {
	some, err := r.option()
	if err != nil || !some {
		return err
	}
	// prefix
	if _, err = r.str(); err != nil {
		return err
	}
	n, err := r.length()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err = r.str(); err != nil {
			return err
		}
		// modifier
		if _, err = r.u8(); err != nil {
			return err
		}
		kind, err := r.u8()
		if err != nil {
			return err
		}
		switch kind {
		case 0: // plain
			_, err = r.compactU32()
		case 1: // map
			if _, err = r.bytes(); err != nil { // hashers, one byte each
				return err
			}
			if _, err = r.compactU32(); err != nil {
				return err
			}
			_, err = r.compactU32()
		default:
			err = fmt.Errorf("unknown storage entry type %d", kind)
		}
		if err != nil {
			return err
		}
		// default value
		if _, err = r.bytes(); err != nil {
			return err
		}
		if _, err = r.strs(); err != nil {
			return err
		}
	}
	return nil
}

func skipConstants(r *reader) error {
	n, err := r.length()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err = r.str(); err != nil {
			return err
		}
		if _, err = r.compactU32(); err != nil {
			return err
		}
		if _, err = r.bytes(); err != nil {
			return err
		}
		if _, err = r.strs(); err != nil {
			return err
		}
	}
	return nil
}

func decodeSignedExtensions(r *reader) ([]SignedExtension, error) {
	n, err := r.length()
	if err != nil {
		return nil, err
	}
	exts := make([]SignedExtension, 0, n)
	for i := 0; i < n; i++ {
		var e SignedExtension
		e.Identifier, err = r.str()
		if err != nil {
			return nil, err
		}
		e.Type, err = r.compactU32()
		if err != nil {
			return nil, err
		}
		e.AdditionalSigned, err = r.compactU32()
		if err != nil {
			return nil, err
		}
		exts = append(exts, e)
	}
	return exts, nil
}

func decodeExtrinsicV14(r *reader, m *Metadata) error {
	ty, err := r.compactU32()
	if err != nil {
		return err
	}
	m.Extrinsic.Type = &ty
	m.Extrinsic.Version, err = r.u8()
	if err != nil {
		return err
	}
	m.Extrinsic.SignedExtensions, err = decodeSignedExtensions(r)
	if err != nil {
		return err
	}

	// UncheckedExtrinsic<Address, Call, Signature, Extra>
	t, err := m.Registry.Lookup(ty)
	if err != nil {
		return err
	}
	var ok bool
	if m.Extrinsic.AddressType, ok = t.Param("Address"); !ok {
		return errors.New("extrinsic type has no Address parameter")
	}
	if m.Extrinsic.CallType, ok = t.Param("Call"); !ok {
		return errors.New("extrinsic type has no Call parameter")
	}
	if m.Extrinsic.SignatureType, ok = t.Param("Signature"); !ok {
		return errors.New("extrinsic type has no Signature parameter")
	}
	if m.Extrinsic.ExtraType, ok = t.Param("Extra"); !ok {
		return errors.New("extrinsic type has no Extra parameter")
	}
	return nil
}

func decodeExtrinsicV15(r *reader, m *Metadata) (err error) {
	e := &m.Extrinsic
	if e.Version, err = r.u8(); err != nil {
		return
	}
	if e.AddressType, err = r.compactU32(); err != nil {
		return
	}
	if e.CallType, err = r.compactU32(); err != nil {
		return
	}
	if e.SignatureType, err = r.compactU32(); err != nil {
		return
	}
	if e.ExtraType, err = r.compactU32(); err != nil {
		return
	}
	e.SignedExtensions, err = decodeSignedExtensions(r)
	return
}
