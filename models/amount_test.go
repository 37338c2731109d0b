package models

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint
		want     string
	}{
		{"0.1", 18, "100000000000000000"},
		{"1", 0, "1"},
		{"1.5", 12, "1500000000000"},
		{"1.50", 1, "15"},
		{".5", 2, "50"},
		{"3.", 2, "300"},
		{"2.000", 0, "2"},
	}
	for _, tt := range tests {
		got, err := ToBaseUnits(tt.amount, tt.decimals)
		require.NoError(t, err, "%s with %d decimals", tt.amount, tt.decimals)
		assert.Equal(t, tt.want, got.String())
	}
}

func TestToBaseUnitsRejects(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint
	}{
		{"fraction without decimals", "0.1", 0},
		{"too precise", "0.001", 2},
		{"zero", "0", 12},
		{"empty", "", 12},
		{"negative", "-1", 12},
		{"two dots", "1.2.3", 12},
		{"not a number", "abc", 12},
		{"overflow", "340282366920938463463374607431768211456", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToBaseUnits(tt.amount, tt.decimals)
			assert.Error(t, err)
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	assert.Equal(t, "0.1", FromBaseUnits(big.NewInt(100000000000000000), 18))
	assert.Equal(t, "1.5", FromBaseUnits(big.NewInt(15), 1))
	assert.Equal(t, "42", FromBaseUnits(big.NewInt(42), 0))
	assert.Equal(t, "0.005", FromBaseUnits(big.NewInt(5), 3))
	assert.Equal(t, "0", FromBaseUnits(nil, 3))
}
