package handlers

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"

	"github.com/skyvein-baas/client-skyvein-golang-api/metadata"
	"github.com/skyvein-baas/client-skyvein-golang-api/models"
)

// Resolution is what the resolver learnt about the connected runtime.
type Resolution struct {
	Descriptor  models.RuntimeDescriptor
	Metadata    *metadata.Metadata
	RawMetadata []byte
}

// ResolveDescriptor fetches metadata, runtime version and chain properties
// and maps them into a RuntimeDescriptor.
func ResolveDescriptor(ctx context.Context, t Transport, log logrus.FieldLogger) (*Resolution, error) {
	raw, err := fetchMetadata(ctx, t, log)
	if err != nil {
		return nil, err
	}
	md, err := metadata.Decode(raw)
	if err != nil {
		return nil, models.NewError(models.ErrMetadataParse, "metadata", err)
	}

	var rv models.RuntimeVersion
	if err := t.Call(ctx, &rv, "state_getRuntimeVersion"); err != nil {
		return nil, models.NewError(models.ErrConnection, "state_getRuntimeVersion", err)
	}
	var props models.ChainProperties
	if err := t.Call(ctx, &props, "system_properties"); err != nil {
		return nil, models.NewError(models.ErrConnection, "system_properties", err)
	}

	d, err := models.NewRuntimeDescriptor(props, rv, md.Version, md.SignedExtensionIdentifiers())
	if err != nil {
		return nil, models.NewError(models.ErrMetadataParse, "system_properties", err)
	}
	if props.SS58Format == nil {
		log.WithField("ss58_prefix", d.AddressPrefix).Warn("chain does not report ss58Format, using default")
	}

	log.WithFields(logrus.Fields{
		"spec_name":        d.SpecName,
		"spec_version":     d.SpecVersion,
		"metadata_version": d.MetadataVersion,
		"extensions":       len(d.SignedExtensionIdentifiers),
	}).Debug("runtime resolved")

	return &Resolution{Descriptor: d, Metadata: md, RawMetadata: raw}, nil
}

// fetchMetadata prefers V15 through the Metadata runtime API and falls back
// to state_getMetadata, which returns the runtime's default version.
func fetchMetadata(ctx context.Context, t Transport, log logrus.FieldLogger) ([]byte, error) {
	raw, err := fetchMetadataAtVersion(ctx, t, metadata.MaxVersion)
	if err == nil {
		return raw, nil
	}
	log.WithError(err).Debug("metadata v15 unavailable, falling back to state_getMetadata")

	var res string
	if err := t.Call(ctx, &res, "state_getMetadata"); err != nil {
		return nil, models.NewError(models.ErrConnection, "state_getMetadata", err)
	}
	raw, err = hexutil.Decode(res)
	if err != nil {
		return nil, models.NewError(models.ErrMetadataParse, "state_getMetadata", err)
	}
	return raw, nil
}

var errVersionUnavailable = errors.New("metadata version not offered by runtime")

func fetchMetadataAtVersion(ctx context.Context, t Transport, version uint32) ([]byte, error) {
	var res string
	if err := t.Call(ctx, &res, "state_call", "Metadata_metadata_versions", "0x"); err != nil {
		return nil, err
	}
	b, err := hexutil.Decode(res)
	if err != nil {
		return nil, err
	}
	versions, err := decodeU32Vec(b)
	if err != nil {
		return nil, fmt.Errorf("metadata versions: %w", err)
	}
	found := false
	for _, v := range versions {
		found = found || v == version
	}
	if !found {
		return nil, fmt.Errorf("%w: %d not in %v", errVersionUnavailable, version, versions)
	}

	arg := make([]byte, 4)
	binary.LittleEndian.PutUint32(arg, version)
	if err := t.Call(ctx, &res, "state_call", "Metadata_metadata_at_version", hexutil.Encode(arg)); err != nil {
		return nil, err
	}
	b, err = hexutil.Decode(res)
	if err != nil {
		return nil, err
	}
	if b, err = decodeOptionBytes(b); err != nil {
		return nil, err
	}
	got, err := metadata.Version(b)
	if err != nil {
		return nil, err
	}
	if uint32(got) != version {
		return nil, fmt.Errorf("%w: asked for %d, runtime returned %d", errVersionUnavailable, version, got)
	}
	return b, nil
}

func decodeU32Vec(b []byte) ([]uint32, error) {
	dec := scale.NewDecoder(bytes.NewReader(b))
	n, err := dec.DecodeUintCompact()
	if err != nil {
		return nil, err
	}
	if !n.IsUint64() || n.Uint64()*4 > uint64(len(b)) {
		return nil, fmt.Errorf("bad vector length %v", n)
	}
	out := make([]uint32, n.Uint64())
	var buf [4]byte
	for i := range out {
		if err := dec.Read(buf[:]); err != nil {
			return nil, err
		}
		out[i] = binary.LittleEndian.Uint32(buf[:])
	}
	return out, nil
}

// decodeOptionBytes decodes Option<Vec<u8>>.
func decodeOptionBytes(b []byte) ([]byte, error) {
	reader := bytes.NewReader(b)
	dec := scale.NewDecoder(reader)
	some, err := dec.ReadOneByte()
	if err != nil {
		return nil, err
	}
	if some == 0 {
		return nil, errVersionUnavailable
	}
	n, err := dec.DecodeUintCompact()
	if err != nil {
		return nil, err
	}
	if !n.IsUint64() || n.Uint64() != uint64(reader.Len()) {
		return nil, fmt.Errorf("opaque metadata length %v does not match %d bytes", n, reader.Len())
	}
	out := make([]byte, reader.Len())
	if err := dec.Read(out); err != nil {
		return nil, err
	}
	return out, nil
}
