package pll

import (
	"fmt"

	"github.com/sarchlab/easysoc/hw"
)

// Builder can build simulated PLLs.
type Builder struct {
	speedGrade  string
	margin      float64
	maxOutputs  int
	inputRange  Range
	vcoRange    Range
	nDivRange   DivRange
	mDivRange   DivRange
	cDivRange   DivRange
	outputLimit map[string]hw.Freq
}

// Range is an inclusive frequency range.
type Range struct {
	Min hw.Freq
	Max hw.Freq
}

// Contains returns true if f is within the range.
func (r Range) Contains(f float64) bool {
	return f >= float64(r.Min) && f <= float64(r.Max)
}

// DivRange is an inclusive range of integer divider values.
type DivRange struct {
	Min int
	Max int
}

// MakeBuilder creates a builder with the capabilities of a Cyclone IV PLL.
func MakeBuilder() Builder {
	return Builder{
		speedGrade: "-8",
		margin:     1e-2,
		maxOutputs: 5,
		inputRange: Range{Min: 5 * hw.MHz, Max: 472500 * hw.KHz},
		vcoRange:   Range{Min: 600 * hw.MHz, Max: 1300 * hw.MHz},
		nDivRange:  DivRange{Min: 1, Max: 5},
		mDivRange:  DivRange{Min: 1, Max: 256},
		cDivRange:  DivRange{Min: 1, Max: 256},
		outputLimit: map[string]hw.Freq{
			"-6": 472500 * hw.KHz,
			"-7": 450 * hw.MHz,
			"-8": 402500 * hw.KHz,
		},
	}
}

// WithSpeedGrade sets the device speed grade, which limits the maximum output
// frequency.
func (b Builder) WithSpeedGrade(grade string) Builder {
	b.speedGrade = grade
	return b
}

// WithMargin sets the relative error allowed between a requested output
// frequency and the synthesized one.
func (b Builder) WithMargin(margin float64) Builder {
	b.margin = margin
	return b
}

// WithMaxOutputs sets how many outputs the PLL provides.
func (b Builder) WithMaxOutputs(n int) Builder {
	b.maxOutputs = n
	return b
}

// WithVCORange sets the frequency range of the voltage-controlled
// oscillator.
func (b Builder) WithVCORange(r Range) Builder {
	b.vcoRange = r
	return b
}

func (b Builder) parametersMustBeValid() {
	if _, ok := b.outputLimit[b.speedGrade]; !ok {
		panic(fmt.Sprintf("unknown speed grade %q", b.speedGrade))
	}

	if b.margin < 0 || b.margin >= 1 {
		panic("margin must be within [0, 1)")
	}

	if b.maxOutputs <= 0 {
		panic("a PLL needs at least one output")
	}

	if b.vcoRange.Min == 0 || b.vcoRange.Min > b.vcoRange.Max {
		panic("invalid VCO range")
	}
}

// Build creates a new PLL.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	return &Comp{
		name:        name,
		margin:      b.margin,
		maxOutputs:  b.maxOutputs,
		inputRange:  b.inputRange,
		vcoRange:    b.vcoRange,
		nDivRange:   b.nDivRange,
		mDivRange:   b.mDivRange,
		cDivRange:   b.cDivRange,
		outputRange: Range{Min: hw.Hz, Max: b.outputLimit[b.speedGrade]},
	}
}
