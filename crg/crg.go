// Package crg derives the clock domains of the SoC from the board oscillator.
package crg

import (
	"fmt"
	"strings"

	"github.com/sarchlab/easysoc/hooking"
	"github.com/sarchlab/easysoc/hw"
	"github.com/sarchlab/easysoc/sdram"
)

// Names of the clock domains created besides sys.
const (
	SysPSDomain   = "sys_ps"
	Sys2xDomain   = "sys2x"
	Sys2xPSDomain = "sys2x_ps"
)

// HookPosDomainCreated marks the creation of a clock domain. The item is the
// hw.ClockDomain.
var HookPosDomainCreated = &hooking.HookPos{Name: "DomainCreated"}

// HookPosResolved marks the end of a resolution. The item is the DDR clock
// domain name and the detail is the hw.ResetNet.
var HookPosResolved = &hooking.HookPos{Name: "Resolved"}

// Comp is a clock and reset generator.
type Comp struct {
	*hooking.HookableBase

	name   string
	pll    hw.PLL
	phases Phases
	rst    string
}

// Name returns the name of the generator.
func (c *Comp) Name() string {
	return c.name
}

// ResetInput returns the name of the reset input signal. Asserting it
// retrains the PLL and resets every domain at once.
func (c *Comp) ResetInput() string {
	return c.rst
}

// Phases returns the phases used for the DDR clock domains.
func (c *Comp) Phases() Phases {
	return c.phases
}

// Resolve creates the clock domains for the requested system frequency and
// timing mode. It returns the domain set and the name of the domain that
// drives the DDR clock output. On error, no domain set is returned.
func (c *Comp) Resolve(
	ref hw.ClockSignal,
	sysFreq hw.Freq,
	mode sdram.TimingMode,
) (*hw.ClockDomainSet, string, error) {
	plan, ddr, err := c.plan(sysFreq, mode)
	if err != nil {
		return nil, "", err
	}

	if err := c.pll.RegisterInput(ref, ref.Freq); err != nil {
		return nil, "", fmt.Errorf("crg %s: reference %s: %w",
			c.name, ref.Name, err)
	}

	c.pll.BindReset(c.rst)

	set := hw.NewClockDomainSet()
	for _, d := range plan {
		if _, err := c.pll.CreateOutput(d.Name, d.Freq, d.Phase); err != nil {
			return nil, "", fmt.Errorf("crg %s: domain %s: %w",
				c.name, d.Name, err)
		}

		if err := set.Add(d); err != nil {
			return nil, "", err
		}

		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosDomainCreated,
			Item:   d,
		})
	}

	if err := set.Validate(); err != nil {
		return nil, "", err
	}

	net := c.pll.ResetNet()
	if err := resetNetMustCover(net, set); err != nil {
		return nil, "", err
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosResolved,
		Item:   ddr,
		Detail: net.Signal,
	})

	return set, ddr, nil
}

// plan lists the domains of a mode without touching the PLL, so that bad
// parameters are reported before any output is created.
func (c *Comp) plan(
	sysFreq hw.Freq,
	mode sdram.TimingMode,
) ([]hw.ClockDomain, string, error) {
	if sysFreq == 0 {
		return nil, "", &hw.ConfigurationError{
			Param:      "sys_clk_freq",
			Value:      sysFreq.String(),
			Constraint: "must be positive",
		}
	}

	if err := mode.Validate(); err != nil {
		return nil, "", err
	}

	sys := hw.ClockDomain{Name: hw.SysDomainName, Freq: sysFreq}

	switch mode {
	case sdram.HalfRate:
		if err := hw.PhaseMustBeValid("sys2x_ps_phase", c.phases.Sys2xPS); err != nil {
			return nil, "", err
		}

		sys2x, err := sysFreq.Multiply(2)
		if err != nil {
			return nil, "", err
		}

		return []hw.ClockDomain{
			sys,
			{Name: Sys2xDomain, Freq: sys2x},
			{
				Name:  Sys2xPSDomain,
				Freq:  sys2x,
				Phase: c.phases.Sys2xPS,
				Reset: hw.ResetLess,
			},
		}, Sys2xPSDomain, nil
	default:
		if err := hw.PhaseMustBeValid("sys_ps_phase", c.phases.SysPS); err != nil {
			return nil, "", err
		}

		return []hw.ClockDomain{
			sys,
			{
				Name:  SysPSDomain,
				Freq:  sysFreq,
				Phase: c.phases.SysPS,
				Reset: hw.ResetLess,
			},
		}, SysPSDomain, nil
	}
}

func resetNetMustCover(net hw.ResetNet, set *hw.ClockDomainSet) error {
	var uncovered []string

	for _, name := range set.Names() {
		if !net.Covers(name) {
			uncovered = append(uncovered, name)
		}
	}

	if len(uncovered) > 0 {
		return &hw.ConfigurationError{
			Param:      "reset",
			Value:      net.Signal,
			Constraint: "every domain must share the PLL reset; not covered: " +
				strings.Join(uncovered, ", "),
		}
	}

	return nil
}
