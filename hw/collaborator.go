package hw

// PLL is a clock synthesis primitive that derives output clocks from one
// reference input.
type PLL interface {
	// RegisterInput sets the reference clock of the PLL.
	RegisterInput(clk ClockSignal, freq Freq) error

	// CreateOutput requests an output clock for the given domain. It returns
	// a CapabilityExceededError if the PLL cannot synthesize it.
	CreateOutput(domain string, freq Freq, phase Phase) (ClockSignal, error)

	// BindReset connects a reset input signal to the PLL. Asserting it
	// retrains every output.
	BindReset(signal string)

	// ResetNet returns the reset network that drives all the outputs created
	// so far.
	ResetNet() ResetNet
}

// Platform hands out the physical resources of a board.
type Platform interface {
	// Name returns the board name.
	Name() string

	// Device returns the FPGA part number.
	Device() string

	// RequestResource returns the first unused resource with the given name.
	RequestResource(name string) (SignalGroup, error)

	// RequestAllResources returns every unused resource whose name starts
	// with the prefix.
	RequestAllResources(prefix string) ([]SignalGroup, error)

	// ReleaseResources returns groups handed out earlier so that they can be
	// requested again. Unknown or unused groups are ignored.
	ReleaseResources(groups ...SignalGroup)
}
