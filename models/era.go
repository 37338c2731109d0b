package models

import (
	"fmt"
	"math/bits"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// Era is the validity window of a transaction (CheckMortality).
type Era struct {
	IsMortal bool
	Period   uint64
	Phase    uint64
}

// ImmortalEra never expires; its checkpoint block is genesis.
var ImmortalEra = Era{}

// NewMortalEra describes a window of roughly validityPeriod blocks starting at
// the given block number.
func NewMortalEra(validityPeriod, eraBirthBlockNumber uint64) Era {
	period := uint64(4)
	for period < validityPeriod && period < 1<<16 {
		period <<= 1
	}

	q := quantizeFactor(period)
	phase := eraBirthBlockNumber % period / q * q

	return Era{IsMortal: true, Period: period, Phase: phase}
}

// Birth returns the first block the era is valid for, given the block number
// it was created at.
func (e Era) Birth(current uint64) uint64 {
	if !e.IsMortal {
		return 0
	}
	return (maxUint64(current, e.Phase)-e.Phase)/e.Period*e.Period + e.Phase
}

// ExtrinsicEra is the wire form of e.
func (e Era) ExtrinsicEra() types.ExtrinsicEra {
	if !e.IsMortal {
		return types.ExtrinsicEra{IsImmortalEra: true}
	}
	low := uint64(1)
	if tz := uint64(bits.TrailingZeros64(e.Period)); tz > 2 {
		low = tz - 1
	}
	if low > 15 {
		low = 15
	}
	encoded := uint16(e.Phase/quantizeFactor(e.Period))<<4 | uint16(low)
	return types.ExtrinsicEra{
		IsMortalEra: true,
		AsMortalEra: types.MortalEra{First: byte(encoded & 0xff), Second: byte(encoded >> 8)},
	}
}

// EraFromExtrinsic recovers period and phase from the wire form.
func EraFromExtrinsic(x types.ExtrinsicEra) (Era, error) {
	if !x.IsMortalEra {
		return ImmortalEra, nil
	}
	encoded := uint64(x.AsMortalEra.First) | uint64(x.AsMortalEra.Second)<<8
	period := uint64(2) << (encoded % (1 << 4))
	phase := (encoded >> 4) * quantizeFactor(period)
	if period < 4 || phase >= period {
		return Era{}, fmt.Errorf("invalid mortal era period %d phase %d", period, phase)
	}
	return Era{IsMortal: true, Period: period, Phase: phase}, nil
}

func (e Era) Bytes() []byte {
	x := e.ExtrinsicEra()
	if x.IsImmortalEra {
		return []byte{0}
	}
	return []byte{x.AsMortalEra.First, x.AsMortalEra.Second}
}

func (e Era) Encode(encoder scale.Encoder) error {
	return e.ExtrinsicEra().Encode(encoder)
}

func (e *Era) Decode(decoder scale.Decoder) error {
	var x types.ExtrinsicEra
	if err := x.Decode(decoder); err != nil {
		return err
	}
	era, err := EraFromExtrinsic(x)
	if err != nil {
		return err
	}
	*e = era
	return nil
}

// quantizeFactor is the phase granularity of periods above 4096 blocks.
func quantizeFactor(period uint64) uint64 {
	if q := period >> 12; q > 1 {
		return q
	}
	return 1
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
