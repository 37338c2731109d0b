package models

import (
	"fmt"

	"github.com/decred/base58"
	subkey "github.com/vedhavyas/go-subkey/v2"
)

// DefaultSS58Prefix is the generic Substrate network identifier, used when a
// chain does not report its own.
const DefaultSS58Prefix uint16 = 42

// MaxSS58Prefix is the largest network identifier SS58 can carry.
const MaxSS58Prefix uint16 = 16383

// SS58Encode renders a 32-byte account id for the given network.
func SS58Encode(addr []byte, prefix uint16) (string, error) {
	if len(addr) != 32 {
		return "", fmt.Errorf("account id must be 32 bytes, got %d", len(addr))
	}
	if prefix > MaxSS58Prefix {
		return "", fmt.Errorf("ss58 prefix %d out of range", prefix)
	}
	return subkey.SS58Encode(addr, prefix), nil
}

// SS58Decode returns the network prefix and account id of an SS58 address.
func SS58Decode(ss58addr string) (prefix uint16, addr []byte, err error) {
	// one prefix byte, the account id and two checksum bytes at least
	if n := len(base58.Decode(ss58addr)); n < 35 {
		return 0, nil, fmt.Errorf("address too short: %d bytes", n)
	}
	prefix, addr, err = subkey.SS58Decode(ss58addr)
	if err != nil {
		return 0, nil, err
	}
	if len(addr) != 32 {
		return 0, nil, fmt.Errorf("unexpected account id length %d", len(addr))
	}
	return prefix, addr, nil
}
