package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultTokenSymbol and DefaultTokenDecimals apply when a chain does not
// report token properties.
const (
	DefaultTokenSymbol   = "UNIT"
	DefaultTokenDecimals = 0
)

// RuntimeDescriptor is the read-only snapshot of chain identity used to build
// and sign one transfer.
type RuntimeDescriptor struct {
	TokenSymbol                string
	Decimals                   uint
	AddressPrefix              uint16
	SpecName                   string
	SpecVersion                uint32
	TransactionVersion         uint32
	MetadataVersion            uint8
	SignedExtensionIdentifiers []string
}

// HasSignedExtension reports whether the runtime lists the identifier.
func (d RuntimeDescriptor) HasSignedExtension(identifier string) bool {
	for _, id := range d.SignedExtensionIdentifiers {
		if id == identifier {
			return true
		}
	}
	return false
}

// ChainProperties is the raw system_properties answer. Token fields are
// either scalars or arrays (multi-token chains).
type ChainProperties struct {
	SS58Format    *uint16         `json:"ss58Format"`
	TokenDecimals json.RawMessage `json:"tokenDecimals"`
	TokenSymbol   json.RawMessage `json:"tokenSymbol"`
}

// RuntimeVersion is the subset of state_getRuntimeVersion the transfer needs.
type RuntimeVersion struct {
	SpecName           string `json:"specName"`
	SpecVersion        uint32 `json:"specVersion"`
	TransactionVersion uint32 `json:"transactionVersion"`
}

// NewRuntimeDescriptor maps the node's answers into a descriptor. The address
// prefix falls back to DefaultSS58Prefix when the chain omits it.
func NewRuntimeDescriptor(props ChainProperties, rv RuntimeVersion, metadataVersion uint8, extensions []string) (RuntimeDescriptor, error) {
	d := RuntimeDescriptor{
		TokenSymbol:                DefaultTokenSymbol,
		Decimals:                   DefaultTokenDecimals,
		AddressPrefix:              DefaultSS58Prefix,
		SpecName:                   rv.SpecName,
		SpecVersion:                rv.SpecVersion,
		TransactionVersion:         rv.TransactionVersion,
		MetadataVersion:            metadataVersion,
		SignedExtensionIdentifiers: append([]string(nil), extensions...),
	}
	if props.SS58Format != nil {
		d.AddressPrefix = *props.SS58Format
	}
	if d.AddressPrefix >= 16384 {
		return RuntimeDescriptor{}, fmt.Errorf("ss58Format %d is not a valid network identifier", d.AddressPrefix)
	}

	symbol, err := firstString(props.TokenSymbol)
	if err != nil {
		return RuntimeDescriptor{}, fmt.Errorf("tokenSymbol: %w", err)
	}
	if symbol != "" {
		d.TokenSymbol = symbol
	}

	decimals, ok, err := firstUint(props.TokenDecimals)
	if err != nil {
		return RuntimeDescriptor{}, fmt.Errorf("tokenDecimals: %w", err)
	}
	if ok {
		d.Decimals = decimals
	}
	return d, nil
}

func firstString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[0], nil
}

func firstUint(raw json.RawMessage) (uint, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false, nil
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []json.Number
		if err := json.Unmarshal(raw, &list); err != nil {
			return 0, false, err
		}
		if len(list) == 0 {
			return 0, false, nil
		}
		trimmed = list[0].String()
	}
	v, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, false, err
	}
	return uint(v), true, nil
}
