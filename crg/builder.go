package crg

import (
	"github.com/sarchlab/easysoc/hooking"
	"github.com/sarchlab/easysoc/hw"
)

// Phases are the phase offsets of the reset-less DDR clock domains. The
// ideal offset is 90°, but the output stage delay of the board pushes the
// working value up, so the right number depends on the board and must be
// measured.
type Phases struct {
	// SysPS is the phase of sys_ps in full-rate mode.
	SysPS hw.Phase

	// Sys2xPS is the phase of sys2x_ps in half-rate mode.
	Sys2xPS hw.Phase
}

// DefaultPhases returns the offsets that work on the RZ-EasyFPGA.
func DefaultPhases() Phases {
	return Phases{SysPS: 180, Sys2xPS: 270}
}

// Builder can build clock and reset generators.
type Builder struct {
	pll    hw.PLL
	phases Phases
	hooks  []hooking.Hook
}

// MakeBuilder creates a builder with default phases.
func MakeBuilder() Builder {
	return Builder{
		phases: DefaultPhases(),
	}
}

// WithPLL sets the PLL the generator derives its clocks from.
func (b Builder) WithPLL(pll hw.PLL) Builder {
	b.pll = pll
	return b
}

// WithPhases overrides the phases of the DDR clock domains.
func (b Builder) WithPhases(phases Phases) Builder {
	b.phases = phases
	return b
}

// WithAdditionalHooks adds a hook to the generator.
func (b Builder) WithAdditionalHooks(h hooking.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.pll == nil {
		panic("a PLL is required to build a clock and reset generator")
	}
}

// Build creates a new generator.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		pll:          b.pll,
		phases:       b.phases,
		rst:          name + "_rst",
	}

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	return c
}
