// Package metadatatest builds small but well-formed runtime metadata blobs
// for tests. The registry mimics a Substrate runtime with a System pallet at
// index 0 and a Balances pallet at a configurable index.
package metadatatest

import (
	"bytes"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// Registry ids of the synthetic runtime.
const (
	TypeU8 uint32 = iota
	TypeAccountBytes
	TypeAccountID
	TypeU128
	TypeCompactU128
	TypeMultiAddress
	TypeBytes
	TypeBalancesCall
	TypeSystemCall
	TypeRuntimeCall
	TypeSignatureBytes
	TypeMultiSignature
	TypeEra
	TypeUnit
	TypeCheckMortality
	TypeU32
	TypeCompactU32
	TypeCheckNonce
	TypeChargeTransactionPayment
	TypeMode
	TypeCheckMetadataHash
	TypeOptionHash
	TypeH256
	TypeUncheckedExtrinsic
	TypeExtra
	TypeBool
	TypeBitVec
	TypeLsb0
)

const (
	SystemIndex           uint8 = 0
	DefaultBalancesIndex  uint8 = 10
	TransferKeepAliveCall uint8 = 3
	ExtrinsicVersion      uint8 = 4
)

// DefaultExtensions is the signed extension list of a current polkadot-sdk
// runtime.
func DefaultExtensions() []string {
	return []string{
		"CheckNonZeroSender",
		"CheckSpecVersion",
		"CheckTxVersion",
		"CheckGenesis",
		"CheckMortality",
		"CheckNonce",
		"CheckWeight",
		"ChargeTransactionPayment",
		"CheckMetadataHash",
	}
}

// LegacyExtensions is DefaultExtensions without CheckMetadataHash.
func LegacyExtensions() []string {
	return DefaultExtensions()[:8]
}

type Options struct {
	Version uint8
	// SignedExtensions defaults to DefaultExtensions.
	SignedExtensions []string
	// BalancesIndex defaults to DefaultBalancesIndex.
	BalancesIndex uint8
	// AccountIDAddress makes the runtime address a bare AccountId32.
	AccountIDAddress bool
}

// Build returns a RuntimeMetadataPrefixed blob.
func Build(opts Options) []byte {
	if opts.Version == 0 {
		opts.Version = 15
	}
	if opts.SignedExtensions == nil {
		opts.SignedExtensions = DefaultExtensions()
	}
	if opts.BalancesIndex == 0 {
		opts.BalancesIndex = DefaultBalancesIndex
	}

	w := newWriter()
	w.raw([]byte("meta"))
	w.u8(opts.Version)
	writeRegistry(w, opts)
	writePallets(w, opts)

	if opts.Version == 14 {
		w.compact(uint64(TypeUncheckedExtrinsic))
		w.u8(ExtrinsicVersion)
		writeSignedExtensions(w, opts.SignedExtensions)
		// runtime type
		w.compact(uint64(TypeUnit))
		return w.bytes()
	}

	w.u8(ExtrinsicVersion)
	w.compact(uint64(addressType(opts)))
	w.compact(uint64(TypeRuntimeCall))
	w.compact(uint64(TypeMultiSignature))
	w.compact(uint64(TypeExtra))
	writeSignedExtensions(w, opts.SignedExtensions)
	// runtime type, runtime apis, outer enums, custom
	w.compact(uint64(TypeUnit))
	w.compact(0)
	w.compact(uint64(TypeRuntimeCall))
	w.compact(uint64(TypeUnit))
	w.compact(uint64(TypeUnit))
	w.compact(0)
	return w.bytes()
}

func addressType(opts Options) uint32 {
	if opts.AccountIDAddress {
		return TypeAccountID
	}
	return TypeMultiAddress
}

// extensionTypes maps an identifier to its (ty, additional_signed) pair.
func extensionTypes(id string) (uint32, uint32) {
	switch id {
	case "CheckSpecVersion", "CheckTxVersion":
		return TypeUnit, TypeU32
	case "CheckGenesis":
		return TypeUnit, TypeH256
	case "CheckMortality", "CheckEra":
		return TypeCheckMortality, TypeH256
	case "CheckNonce":
		return TypeCheckNonce, TypeUnit
	case "ChargeTransactionPayment":
		return TypeChargeTransactionPayment, TypeUnit
	case "CheckMetadataHash":
		return TypeCheckMetadataHash, TypeOptionHash
	}
	return TypeUnit, TypeUnit
}

func writeSignedExtensions(w *writer, ids []string) {
	w.compact(uint64(len(ids)))
	for _, id := range ids {
		ty, add := extensionTypes(id)
		w.str(id)
		w.compact(uint64(ty))
		w.compact(uint64(add))
	}
}

type field struct {
	name     string
	ty       uint32
	typeName string
}

type variant struct {
	name   string
	fields []field
	index  uint8
}

type param struct {
	name string
	ty   *uint32
}

func ref(id uint32) *uint32 { return &id }

func writeRegistry(w *writer, opts Options) {
	extTypes := make([]uint32, 0, len(opts.SignedExtensions))
	for _, id := range opts.SignedExtensions {
		ty, _ := extensionTypes(id)
		extTypes = append(extTypes, ty)
	}
	address := addressType(opts)

	// Registration order must follow the Type* constants.
	var types []func()
	add := func(path []string, params []param, def func()) {
		id := uint64(len(types))
		types = append(types, func() {
			w.compact(id)
			w.strs(path)
			w.compact(uint64(len(params)))
			for _, p := range params {
				w.str(p.name)
				if p.ty == nil {
					w.u8(0)
				} else {
					w.u8(1)
					w.compact(uint64(*p.ty))
				}
			}
			def()
			w.strs([]string{"docs are dropped by the decoder"})
		})
	}

	add(nil, nil, func() { w.primitive(3) })
	add(nil, nil, func() { w.array(32, TypeU8) })
	add([]string{"sp_core", "crypto", "AccountId32"}, nil, func() {
		w.composite([]field{{ty: TypeAccountBytes, typeName: "[u8; 32]"}})
	})
	add(nil, nil, func() { w.primitive(7) })
	add(nil, nil, func() { w.compactDef(TypeU128) })
	add([]string{"sp_runtime", "multiaddress", "MultiAddress"},
		[]param{{"AccountId", ref(TypeAccountID)}, {"AccountIndex", nil}}, func() {
			w.variants([]variant{
				{name: "Id", fields: []field{{ty: TypeAccountID, typeName: "AccountId"}}, index: 0},
				{name: "Raw", fields: []field{{ty: TypeBytes, typeName: "Vec<u8>"}}, index: 2},
			})
		})
	add(nil, nil, func() { w.sequence(TypeU8) })
	add([]string{"pallet_balances", "pallet", "Call"}, nil, func() {
		w.variants([]variant{
			{name: "transfer_allow_death", fields: []field{
				{name: "dest", ty: address, typeName: "AccountIdLookupOf<T>"},
				{name: "value", ty: TypeCompactU128, typeName: "T::Balance"},
			}, index: 0},
			{name: "transfer_keep_alive", fields: []field{
				{name: "dest", ty: address, typeName: "AccountIdLookupOf<T>"},
				{name: "value", ty: TypeCompactU128, typeName: "T::Balance"},
			}, index: TransferKeepAliveCall},
		})
	})
	add([]string{"frame_system", "pallet", "Call"}, nil, func() {
		w.variants([]variant{
			{name: "remark", fields: []field{{name: "remark", ty: TypeBytes, typeName: "Vec<u8>"}}, index: 0},
			{name: "remark_bits", fields: []field{{name: "bits", ty: TypeBitVec}}, index: 9},
		})
	})
	add([]string{"runtime", "RuntimeCall"}, nil, func() {
		w.variants([]variant{
			{name: "System", fields: []field{{ty: TypeSystemCall}}, index: SystemIndex},
			{name: "Balances", fields: []field{{ty: TypeBalancesCall}}, index: opts.BalancesIndex},
		})
	})
	add(nil, nil, func() { w.array(64, TypeU8) })
	add([]string{"sp_runtime", "MultiSignature"}, nil, func() {
		w.variants([]variant{
			{name: "Ed25519", fields: []field{{ty: TypeSignatureBytes}}, index: 0},
			{name: "Sr25519", fields: []field{{ty: TypeSignatureBytes}}, index: 1},
		})
	})
	add([]string{"sp_runtime", "generic", "era", "Era"}, nil, func() {
		w.variants([]variant{
			{name: "Immortal", index: 0},
			{name: "Mortal1", fields: []field{{ty: TypeU8}}, index: 1},
		})
	})
	add(nil, nil, func() { w.tuple(nil) })
	add([]string{"frame_system", "extensions", "check_mortality", "CheckMortality"}, nil, func() {
		w.composite([]field{{ty: TypeEra, typeName: "Era"}})
	})
	add(nil, nil, func() { w.primitive(5) })
	add(nil, nil, func() { w.compactDef(TypeU32) })
	add([]string{"frame_system", "extensions", "check_nonce", "CheckNonce"}, nil, func() {
		w.composite([]field{{ty: TypeCompactU32, typeName: "T::Nonce"}})
	})
	add([]string{"pallet_transaction_payment", "ChargeTransactionPayment"}, nil, func() {
		w.composite([]field{{ty: TypeCompactU128, typeName: "BalanceOf<T>"}})
	})
	add([]string{"frame_metadata_hash_extension", "Mode"}, nil, func() {
		w.variants([]variant{{name: "Disabled", index: 0}, {name: "Enabled", index: 1}})
	})
	add([]string{"frame_metadata_hash_extension", "CheckMetadataHash"}, nil, func() {
		w.composite([]field{{name: "mode", ty: TypeMode, typeName: "Mode"}})
	})
	add([]string{"Option"}, []param{{"T", ref(TypeAccountBytes)}}, func() {
		w.variants([]variant{
			{name: "None", index: 0},
			{name: "Some", fields: []field{{ty: TypeAccountBytes}}, index: 1},
		})
	})
	add([]string{"primitive_types", "H256"}, nil, func() {
		w.composite([]field{{ty: TypeAccountBytes, typeName: "[u8; 32]"}})
	})
	add([]string{"sp_runtime", "generic", "unchecked_extrinsic", "UncheckedExtrinsic"},
		[]param{
			{"Address", ref(address)},
			{"Call", ref(TypeRuntimeCall)},
			{"Signature", ref(TypeMultiSignature)},
			{"Extra", ref(TypeExtra)},
		}, func() {
			w.composite([]field{{ty: TypeBytes}})
		})
	add(nil, nil, func() { w.tuple(extTypes) })
	add(nil, nil, func() { w.primitive(0) })
	add([]string{"bitvec", "vec", "BitVec"}, nil, func() {
		w.u8(7)
		w.compact(uint64(TypeU8))
		w.compact(uint64(TypeLsb0))
	})
	add([]string{"bitvec", "order", "Lsb0"}, nil, func() { w.composite(nil) })

	w.compact(uint64(len(types)))
	for _, t := range types {
		t()
	}
}

func writePallets(w *writer, opts Options) {
	w.compact(2)

	// System, with storage and a constant
	w.str("System")
	w.u8(1)
	w.str("System")
	w.compact(2)
	w.str("Number")
	w.u8(1) // default modifier
	w.u8(0) // plain
	w.compact(uint64(TypeU32))
	w.vec(make([]byte, 4))
	w.strs(nil)
	w.str("BlockHash")
	w.u8(1)
	w.u8(1) // map
	w.vec([]byte{4})
	w.compact(uint64(TypeU32))
	w.compact(uint64(TypeH256))
	w.vec(make([]byte, 32))
	w.strs([]string{"Map of block numbers to block hashes."})
	w.u8(1)
	w.compact(uint64(TypeSystemCall))
	w.u8(0) // event
	w.compact(1)
	w.str("SS58Prefix")
	w.compact(uint64(TypeU32))
	w.vec([]byte{42, 0, 0, 0})
	w.strs(nil)
	w.u8(0) // error
	w.u8(SystemIndex)
	if opts.Version >= 15 {
		w.strs(nil)
	}

	w.str("Balances")
	w.u8(0)
	w.u8(1)
	w.compact(uint64(TypeBalancesCall))
	w.u8(0)
	w.compact(0)
	w.u8(0)
	w.u8(opts.BalancesIndex)
	if opts.Version >= 15 {
		w.strs([]string{"The Balances pallet."})
	}
}

type writer struct {
	buf bytes.Buffer
	enc *scale.Encoder
}

func newWriter() *writer {
	w := &writer{}
	w.enc = scale.NewEncoder(&w.buf)
	return w
}

func (w *writer) bytes() []byte { return w.buf.Bytes() }

func (w *writer) raw(b []byte) {
	if err := w.enc.Write(b); err != nil {
		panic(err)
	}
}

func (w *writer) u8(b uint8) {
	if err := w.enc.PushByte(b); err != nil {
		panic(err)
	}
}

func (w *writer) u32(v uint32) {
	w.raw([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func (w *writer) compact(v uint64) {
	if err := w.enc.EncodeUintCompact(*new(big.Int).SetUint64(v)); err != nil {
		panic(err)
	}
}

func (w *writer) vec(b []byte) {
	w.compact(uint64(len(b)))
	w.raw(b)
}

func (w *writer) str(s string) { w.vec([]byte(s)) }

func (w *writer) strs(ss []string) {
	w.compact(uint64(len(ss)))
	for _, s := range ss {
		w.str(s)
	}
}

func (w *writer) optionStr(s string) {
	if s == "" {
		w.u8(0)
		return
	}
	w.u8(1)
	w.str(s)
}

func (w *writer) fields(fs []field) {
	w.compact(uint64(len(fs)))
	for _, f := range fs {
		w.optionStr(f.name)
		w.compact(uint64(f.ty))
		w.optionStr(f.typeName)
		w.strs(nil)
	}
}

func (w *writer) composite(fs []field) {
	w.u8(0)
	w.fields(fs)
}

func (w *writer) variants(vs []variant) {
	w.u8(1)
	w.compact(uint64(len(vs)))
	for _, v := range vs {
		w.str(v.name)
		w.fields(v.fields)
		w.u8(v.index)
		w.strs(nil)
	}
}

func (w *writer) sequence(elem uint32) {
	w.u8(2)
	w.compact(uint64(elem))
}

func (w *writer) array(n, elem uint32) {
	w.u8(3)
	w.u32(n)
	w.compact(uint64(elem))
}

func (w *writer) tuple(ids []uint32) {
	w.u8(4)
	w.compact(uint64(len(ids)))
	for _, id := range ids {
		w.compact(uint64(id))
	}
}

func (w *writer) primitive(p uint8) {
	w.u8(5)
	w.u8(p)
}

func (w *writer) compactDef(elem uint32) {
	w.u8(6)
	w.compact(uint64(elem))
}
