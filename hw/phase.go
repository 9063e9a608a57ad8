package hw

import "fmt"

// Phase is a clock phase offset in degrees, relative to the reference edge
// of the PLL output it belongs to.
type Phase int

// PhaseMustBeValid returns a ConfigurationError if the phase is outside of
// [0, 360).
func PhaseMustBeValid(param string, p Phase) error {
	if p < 0 || p >= 360 {
		return &ConfigurationError{
			Param:      param,
			Value:      fmt.Sprintf("%d", int(p)),
			Constraint: "phase must be within [0, 359] degrees",
		}
	}

	return nil
}

func (p Phase) String() string {
	return fmt.Sprintf("%d°", int(p))
}
