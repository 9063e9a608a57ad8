package sdram

import (
	"math"
	"math/bits"

	"github.com/sarchlab/easysoc/hw"
)

// Timing is a chip timing expressed as a minimum number of memory clock
// cycles, a minimum duration in nanoseconds, or both. Zero means unset.
type Timing struct {
	CK int
	NS float64
}

// Geometry describes the organization of an SDRAM chip.
type Geometry struct {
	NumBanks int
	NumRows  int
	NumCols  int
	DataBits int
}

// BankBits returns the number of bank address bits.
func (g Geometry) BankBits() int { return log2(g.NumBanks) }

// RowBits returns the number of row address bits.
func (g Geometry) RowBits() int { return log2(g.NumRows) }

// ColBits returns the number of column address bits.
func (g Geometry) ColBits() int { return log2(g.NumCols) }

// SizeBytes returns the capacity of the chip.
func (g Geometry) SizeBytes() uint64 {
	return uint64(g.NumBanks) * uint64(g.NumRows) * uint64(g.NumCols) *
		uint64(g.DataBits) / 8
}

func log2(n int) int {
	if n <= 0 {
		return 0
	}

	return bits.Len(uint(n)) - 1
}

// Module is an SDRAM chip.
type Module struct {
	Name     string
	Geometry Geometry

	TRP   Timing
	TRCD  Timing
	TWR   Timing
	TRFC  Timing
	TWTR  Timing
	TCCD  Timing
	TRRD  Timing
	TREFI Timing
}

// MT48LC4M16 is the 64 Mbit SDR SDRAM fitted on the RZ-EasyFPGA (a Hynix
// HY57V641620FTP-7 on some revisions, same timings).
var MT48LC4M16 = Module{
	Name: "MT48LC4M16",
	Geometry: Geometry{
		NumBanks: 4,
		NumRows:  4096,
		NumCols:  256,
		DataBits: 16,
	},
	TRP:   Timing{NS: 15},
	TRCD:  Timing{NS: 15},
	TWR:   Timing{NS: 14},
	TRFC:  Timing{NS: 66},
	TWTR:  Timing{CK: 2},
	TCCD:  Timing{CK: 1},
	TRRD:  Timing{NS: 14},
	TREFI: Timing{NS: 64e6 / 4096},
}

// Modules lists the supported chips by name.
var Modules = map[string]Module{
	MT48LC4M16.Name: MT48LC4M16,
}

// Timings are chip timings converted to controller cycles.
type Timings struct {
	TRP   int
	TRCD  int
	TWR   int
	TRFC  int
	TWTR  int
	TCCD  int
	TRRD  int
	TREFI int
}

// Timings converts the chip timings into cycles of a controller running at
// sysFreq in the given mode. Durations get a margin of the extra PHY phases
// in half-rate mode, except for the refresh interval.
func (m Module) Timings(sysFreq hw.Freq, mode TimingMode) (Timings, error) {
	if sysFreq == 0 {
		return Timings{}, &hw.ConfigurationError{
			Param:      "sys_clk_freq",
			Value:      "0",
			Constraint: "must be positive",
		}
	}

	if err := mode.Validate(); err != nil {
		return Timings{}, err
	}

	c := cycleConverter{
		periodNS: sysFreq.PeriodNS(),
		phases:   mode.PhasesPerCycle(),
	}

	return Timings{
		TRP:   c.cycles(m.TRP, true),
		TRCD:  c.cycles(m.TRCD, true),
		TWR:   c.cycles(m.TWR, true),
		TRFC:  c.cycles(m.TRFC, true),
		TWTR:  c.cycles(m.TWTR, true),
		TCCD:  c.cycles(m.TCCD, true),
		TRRD:  c.cycles(m.TRRD, true),
		TREFI: c.cycles(m.TREFI, false),
	}, nil
}

type cycleConverter struct {
	periodNS float64
	phases   int
}

func (c cycleConverter) cycles(t Timing, margin bool) int {
	ck := 0
	if t.CK > 0 {
		ck = int(math.Ceil(float64(t.CK) / float64(c.phases)))
	}

	ns := 0
	if t.NS > 0 {
		d := t.NS
		if margin {
			d += c.periodNS * float64(c.phases-1) / float64(c.phases)
		}

		ns = int(math.Ceil(d/c.periodNS - 1e-9))
	}

	if ck > ns {
		return ck
	}

	return ns
}
