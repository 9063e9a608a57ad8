package hw

import (
	"fmt"
	"math"
	"math/bits"
)

// Freq defines frequency in the unit of Hertz.
type Freq uint64

// Defines the unit of frequency.
const (
	Hz  Freq = 1
	KHz Freq = 1000 * Hz
	MHz Freq = 1000 * KHz
	GHz Freq = 1000 * MHz
)

// PeriodNS returns the time between two consecutive rising edges, in
// nanoseconds.
func (f Freq) PeriodNS() float64 {
	if f == 0 {
		panic("frequency cannot be 0")
	}

	return 1e9 / float64(f)
}

// Multiply returns the frequency scaled by n. It fails if the result does
// not fit in a Freq.
func (f Freq) Multiply(n uint64) (Freq, error) {
	hi, lo := bits.Mul64(uint64(f), n)
	if hi != 0 {
		return 0, ErrFrequencyOverflow
	}

	return Freq(lo), nil
}

// MHz returns the frequency as a floating point number of megahertz.
func (f Freq) MHz() float64 {
	return float64(f) / float64(MHz)
}

func (f Freq) String() string {
	switch {
	case f >= GHz && f%GHz == 0:
		return fmt.Sprintf("%d GHz", f/GHz)
	case f >= MHz:
		return trimFloat(f.MHz()) + " MHz"
	case f >= KHz:
		return trimFloat(float64(f)/float64(KHz)) + " kHz"
	default:
		return fmt.Sprintf("%d Hz", uint64(f))
	}
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}

	return fmt.Sprintf("%.3f", v)
}

// FreqFromFloat converts a frequency written in floating point notation (for
// example "50e6") into whole Hertz, truncating any fraction.
func FreqFromFloat(hz float64) (Freq, error) {
	if math.IsNaN(hz) || math.IsInf(hz, 0) || hz < 0 {
		return 0, &ConfigurationError{
			Param:      "frequency",
			Value:      fmt.Sprintf("%g", hz),
			Constraint: "must be a finite, non-negative number of Hz",
		}
	}

	if hz >= math.MaxUint64 {
		return 0, ErrFrequencyOverflow
	}

	return Freq(hz), nil
}
