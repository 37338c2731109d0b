package models

import (
	"fmt"
	"math/big"
	"strings"
)

// ToBaseUnits converts a human-readable token amount to the chain's smallest
// unit, e.g. "0.1" with 18 decimals -> 100000000000000000.
//
// Digits beyond the chain's precision are rejected instead of truncated, so a
// fractional amount on a chain without decimals never becomes zero.
func ToBaseUnits(amount string, decimals uint) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}
	if strings.HasPrefix(amount, "-") || strings.HasPrefix(amount, "+") {
		return nil, fmt.Errorf("amount must be unsigned: %s", amount)
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount format: %s", amount)
	}

	if extra := strings.TrimRight(frac, "0"); uint(len(extra)) > decimals {
		return nil, fmt.Errorf("amount %s has more precision than the chain's %d decimals", amount, decimals)
	}
	if uint(len(frac)) > decimals {
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	combined := strings.TrimLeft(whole+frac, "0")
	if combined == "" {
		combined = "0"
	}
	result, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}
	if result.Sign() == 0 {
		return nil, fmt.Errorf("amount %s is zero in base units", amount)
	}
	if result.Cmp(MaxU128) > 0 {
		return nil, fmt.Errorf("amount %s overflows u128", amount)
	}
	return result, nil
}

// FromBaseUnits renders base units as a human-readable amount.
func FromBaseUnits(amount *big.Int, decimals uint) string {
	if amount == nil {
		return "0"
	}
	str := amount.String()
	if uint(len(str)) <= decimals {
		str = strings.Repeat("0", int(decimals)-len(str)+1) + str
	}
	insertPos := len(str) - int(decimals)
	whole, frac := str[:insertPos], strings.TrimRight(str[insertPos:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}
