package soc

import (
	"github.com/sarchlab/easysoc/crg"
	"github.com/sarchlab/easysoc/hw"
	"github.com/sarchlab/easysoc/sdram"
)

// Config holds the parameters an SoC is resolved from. It is built once and
// passed by value.
type Config struct {
	ReferenceClock hw.Freq
	SystemClock    hw.Freq
	TimingMode     sdram.TimingMode

	// ROMSize and SRAMSize are what the caller asks for. The composer always
	// replaces them with the device limits.
	ROMSize  uint64
	SRAMSize uint64

	CPUType    string
	CPUVariant string

	// IntegratedMainRAMSize is non-zero when main memory lives in on-chip
	// RAM, in which case no SDRAM is wired.
	IntegratedMainRAMSize uint64

	SDRAMModule   string
	WithLEDChaser bool
	Phases        crg.Phases
}

// DefaultConfig returns the configuration of a stock RZ-EasyFPGA build.
func DefaultConfig() Config {
	return Config{
		ReferenceClock: 50 * hw.MHz,
		SystemClock:    50 * hw.MHz,
		TimingMode:     sdram.FullRate,
		CPUType:        DefaultCPUType,
		CPUVariant:     "standard",
		SDRAMModule:    sdram.MT48LC4M16.Name,
		WithLEDChaser:  true,
		Phases:         crg.DefaultPhases(),
	}
}

// HasIntegratedMainMemory tells if main memory is on-chip.
func (c Config) HasIntegratedMainMemory() bool {
	return c.IntegratedMainRAMSize > 0
}

// Validate checks the parameters that can be checked without touching any
// collaborator.
func (c Config) Validate() error {
	if c.ReferenceClock == 0 {
		return &hw.ConfigurationError{
			Param:      "reference_clk_freq",
			Value:      c.ReferenceClock.String(),
			Constraint: "must be positive",
		}
	}

	if c.SystemClock == 0 {
		return &hw.ConfigurationError{
			Param:      "sys_clk_freq",
			Value:      c.SystemClock.String(),
			Constraint: "must be positive",
		}
	}

	if err := c.TimingMode.Validate(); err != nil {
		return err
	}

	if err := hw.PhaseMustBeValid("sys_ps_phase", c.Phases.SysPS); err != nil {
		return err
	}

	if err := hw.PhaseMustBeValid("sys2x_ps_phase", c.Phases.Sys2xPS); err != nil {
		return err
	}

	if !c.HasIntegratedMainMemory() {
		if _, ok := sdram.Modules[c.SDRAMModule]; !ok {
			return &hw.ConfigurationError{
				Param:      "sdram_module",
				Value:      c.SDRAMModule,
				Constraint: "unknown SDRAM module",
			}
		}
	}

	return nil
}
