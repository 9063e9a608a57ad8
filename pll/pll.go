// Package pll provides a simulated phase-locked loop that checks clock
// requests against the synthesizable range of a Cyclone IV PLL.
package pll

import (
	"fmt"
	"math"
	"strings"

	"github.com/sarchlab/easysoc/hw"
)

// Output is a clock output that has been requested from the PLL.
type Output struct {
	Domain string
	Freq   hw.Freq
	Phase  hw.Phase
}

// OutputConfig is the divider setting found for one output.
type OutputConfig struct {
	Output
	Divide       int
	ActualFreqHz float64
}

// Config is a complete divider setting of the PLL.
type Config struct {
	N       int
	M       int
	VCOFreq float64
	Outputs []OutputConfig
}

// Comp is a simulated PLL. It implements hw.PLL.
type Comp struct {
	name        string
	margin      float64
	maxOutputs  int
	inputRange  Range
	vcoRange    Range
	outputRange Range
	nDivRange   DivRange
	mDivRange   DivRange
	cDivRange   DivRange

	input    hw.ClockSignal
	hasInput bool
	outputs  []Output
	config   Config
	reset    string
}

// Name returns the name of the PLL.
func (p *Comp) Name() string {
	return p.name
}

// RegisterInput sets the reference clock.
func (p *Comp) RegisterInput(clk hw.ClockSignal, freq hw.Freq) error {
	if p.hasInput {
		return &hw.ConfigurationError{
			Param:      p.name + ".clkin",
			Value:      clk.Name,
			Constraint: "a PLL has exactly one reference input",
		}
	}

	if !p.inputRange.Contains(float64(freq)) {
		return &hw.CapabilityExceededError{
			Domain:    clk.Name,
			Quantity:  "input frequency",
			Requested: freq.String(),
			Min:       p.inputRange.Min.String(),
			Max:       p.inputRange.Max.String(),
		}
	}

	clk.Freq = freq
	p.input = clk
	p.hasInput = true

	return nil
}

// CreateOutput adds an output clock. The dividers are searched again with
// every new output so that a request that cannot coexist with the previous
// ones fails here rather than later.
func (p *Comp) CreateOutput(
	domain string,
	freq hw.Freq,
	phase hw.Phase,
) (hw.ClockSignal, error) {
	if !p.hasInput {
		return hw.ClockSignal{}, &hw.ConfigurationError{
			Param:      p.name + ".clkin",
			Value:      "",
			Constraint: "the reference input must be registered first",
		}
	}

	if len(p.outputs) >= p.maxOutputs {
		return hw.ClockSignal{}, &hw.CapabilityExceededError{
			Domain:    domain,
			Quantity:  "output count",
			Requested: fmt.Sprintf("%d", len(p.outputs)+1),
			Min:       "1",
			Max:       fmt.Sprintf("%d", p.maxOutputs),
		}
	}

	if err := hw.PhaseMustBeValid(domain+".phase", phase); err != nil {
		return hw.ClockSignal{}, err
	}

	if !p.outputRange.Contains(float64(freq)) {
		return hw.ClockSignal{}, &hw.CapabilityExceededError{
			Domain:    domain,
			Quantity:  "output frequency",
			Requested: freq.String(),
			Min:       p.outputRange.Min.String(),
			Max:       p.outputRange.Max.String(),
		}
	}

	outputs := append(append([]Output(nil), p.outputs...),
		Output{Domain: domain, Freq: freq, Phase: phase})

	config, ok := p.computeConfig(outputs)
	if !ok {
		return hw.ClockSignal{}, p.dividerError(domain, freq)
	}

	p.outputs = outputs
	p.config = config

	return hw.ClockSignal{
		Name:  fmt.Sprintf("%s_clk%d", p.name, len(outputs)-1),
		Freq:  freq,
		Phase: phase,
	}, nil
}

// BindReset connects the reset input.
func (p *Comp) BindReset(signal string) {
	p.reset = signal
}

// ResetNet returns the reset net. All outputs share the PLL reset, so every
// domain created so far is on it.
func (p *Comp) ResetNet() hw.ResetNet {
	net := hw.ResetNet{Signal: p.reset}
	for _, o := range p.outputs {
		net.Domains = append(net.Domains, o.Domain)
	}

	return net
}

// Config returns the divider setting of the outputs created so far.
func (p *Comp) Config() Config {
	c := p.config
	c.Outputs = append([]OutputConfig(nil), p.config.Outputs...)

	return c
}

// computeConfig searches the input divider first and the feedback
// multiplier from the highest value down, so the VCO runs as fast as the
// range allows.
func (p *Comp) computeConfig(outputs []Output) (Config, bool) {
	clkin := float64(p.input.Freq)

	for n := p.nDivRange.Min; n <= p.nDivRange.Max; n++ {
		for m := p.mDivRange.Max; m >= p.mDivRange.Min; m-- {
			vco := clkin * float64(m) / float64(n)
			if !p.vcoRange.Contains(vco) {
				continue
			}

			outCfgs, ok := p.findOutputDividers(vco, outputs)
			if ok {
				return Config{N: n, M: m, VCOFreq: vco, Outputs: outCfgs}, true
			}
		}
	}

	return Config{}, false
}

func (p *Comp) findOutputDividers(
	vco float64,
	outputs []Output,
) ([]OutputConfig, bool) {
	cfgs := make([]OutputConfig, 0, len(outputs))

	for _, o := range outputs {
		found := false
		want := float64(o.Freq)

		for c := p.cDivRange.Min; c <= p.cDivRange.Max; c++ {
			actual := vco / float64(c)
			if math.Abs(actual-want) <= want*p.margin {
				cfgs = append(cfgs, OutputConfig{
					Output:       o,
					Divide:       c,
					ActualFreqHz: actual,
				})
				found = true

				break
			}
		}

		if !found {
			return nil, false
		}
	}

	return cfgs, true
}

// dividerError reports either the output frequencies any VCO setting can
// reach, or, when the frequency is reachable but conflicts with the existing
// outputs, the two closest frequencies the current VCO can produce.
func (p *Comp) dividerError(domain string, freq hw.Freq) error {
	lo := float64(p.vcoRange.Min) / float64(p.cDivRange.Max)
	hi := math.Min(float64(p.vcoRange.Max)/float64(p.cDivRange.Min),
		float64(p.outputRange.Max))

	want := float64(freq)
	if want < lo || want > hi || len(p.outputs) == 0 {
		return &hw.CapabilityExceededError{
			Domain:    domain,
			Quantity:  "output frequency reachable from the VCO",
			Requested: freq.String(),
			Min:       roundFreq(lo).String(),
			Max:       roundFreq(hi).String(),
		}
	}

	vco := p.config.VCOFreq
	ratio := vco / want
	cHigh := math.Min(math.Ceil(ratio), float64(p.cDivRange.Max))
	cLow := math.Max(math.Floor(ratio), float64(p.cDivRange.Min))

	sharing := make([]string, 0, len(p.outputs))
	for _, o := range p.outputs {
		sharing = append(sharing, o.Domain)
	}

	return &hw.CapabilityExceededError{
		Domain: domain,
		Quantity: fmt.Sprintf("output frequency (VCO %s shared with %s)",
			roundFreq(vco), strings.Join(sharing, ", ")),
		Requested: freq.String(),
		Min:       roundFreq(vco / cHigh).String(),
		Max:       roundFreq(vco / cLow).String(),
	}
}

func roundFreq(hz float64) hw.Freq {
	return hw.Freq(uint64(math.Round(hz)))
}

var _ hw.PLL = (*Comp)(nil)
