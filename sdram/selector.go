package sdram

import (
	"fmt"
	"strings"

	"github.com/sarchlab/easysoc/hw"
)

// AdapterVariant identifies a memory-controller adapter.
type AdapterVariant int

// Adapter variants.
const (
	StandardRate AdapterVariant = iota + 1
	HalfRateAdapter
)

func (v AdapterVariant) String() string {
	switch v {
	case StandardRate:
		return "StandardRate"
	case HalfRateAdapter:
		return "HalfRateAdapter"
	default:
		return fmt.Sprintf("AdapterVariant(%d)", int(v))
	}
}

// AdapterSpec is the adapter variant together with the clock domains it must
// be bound to.
type AdapterSpec struct {
	Variant         AdapterVariant
	RequiredDomains []string
}

// PHYName returns the name of the PHY block that implements the variant.
func (s AdapterSpec) PHYName() string {
	switch s.Variant {
	case StandardRate:
		return "GENSDRPHY"
	case HalfRateAdapter:
		return "HalfRateGENSDRPHY"
	default:
		return ""
	}
}

// MustBeSatisfiedBy panics if a required domain is missing from the set. A
// mismatch means the selector and the clock generator disagree on the mode,
// which is a programming error.
func (s AdapterSpec) MustBeSatisfiedBy(set *hw.ClockDomainSet) {
	ok, missing := set.Contains(s.RequiredDomains...)
	if !ok {
		panic(fmt.Sprintf("adapter %s requires missing clock domains: %s",
			s.Variant, strings.Join(missing, ", ")))
	}
}

// Selector maps timing modes to adapters.
type Selector struct{}

// Select returns the adapter spec of the mode.
func (Selector) Select(mode TimingMode) (AdapterSpec, error) {
	switch mode {
	case FullRate:
		return AdapterSpec{
			Variant:         StandardRate,
			RequiredDomains: []string{hw.SysDomainName},
		}, nil
	case HalfRate:
		return AdapterSpec{
			Variant:         HalfRateAdapter,
			RequiredDomains: []string{hw.SysDomainName, "sys2x"},
		}, nil
	default:
		return AdapterSpec{}, mode.Validate()
	}
}
