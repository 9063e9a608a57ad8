// Package sdram selects the SDRAM controller adapter that matches a timing
// mode and converts chip timings into controller cycles.
package sdram

import (
	"fmt"

	"github.com/sarchlab/easysoc/hw"
)

// TimingMode is the memory-bus clocking strategy. The zero value is not a
// valid mode.
type TimingMode int

// Timing modes.
const (
	// FullRate runs the controller at the core frequency ("1:1").
	FullRate TimingMode = iota + 1

	// HalfRate runs the PHY at twice the core frequency and downshifts
	// ("1:2").
	HalfRate
)

// ParseTimingMode converts the "1:1" / "1:2" notation into a TimingMode.
func ParseTimingMode(s string) (TimingMode, error) {
	switch s {
	case "1:1":
		return FullRate, nil
	case "1:2":
		return HalfRate, nil
	default:
		return 0, &hw.ConfigurationError{
			Param:      "sdram_rate",
			Value:      s,
			Constraint: `must be "1:1" (full rate) or "1:2" (half rate)`,
		}
	}
}

// Validate returns a ConfigurationError if m is not a known mode.
func (m TimingMode) Validate() error {
	if m != FullRate && m != HalfRate {
		return &hw.ConfigurationError{
			Param:      "sdram_rate",
			Value:      fmt.Sprintf("TimingMode(%d)", int(m)),
			Constraint: "unsupported timing mode",
		}
	}

	return nil
}

// Ratio returns the "1:N" notation of the mode.
func (m TimingMode) Ratio() string {
	switch m {
	case FullRate:
		return "1:1"
	case HalfRate:
		return "1:2"
	default:
		return "invalid"
	}
}

// PhasesPerCycle returns the number of PHY phases handled per controller
// cycle.
func (m TimingMode) PhasesPerCycle() int {
	if m == HalfRate {
		return 2
	}

	return 1
}

func (m TimingMode) String() string {
	switch m {
	case FullRate:
		return "FullRate(1:1)"
	case HalfRate:
		return "HalfRate(1:2)"
	default:
		return fmt.Sprintf("TimingMode(%d)", int(m))
	}
}
