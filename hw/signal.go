package hw

import "strconv"

// ClockSignal is a clock net, either coming from a pad or produced by a PLL
// output.
type ClockSignal struct {
	Name  string
	Freq  Freq
	Phase Phase
}

// Subsignal is a named part of a multi-pin resource.
type Subsignal struct {
	Name string
	Pins []string
}

// SignalGroup is a physical pin group handed out by a platform.
type SignalGroup struct {
	Name       string
	Number     int
	Pins       []string
	Subsignals []Subsignal
	IOStandard string
}

// ID returns the name and number of the group, in the "name:number" form.
func (g SignalGroup) ID() string {
	return g.Name + ":" + strconv.Itoa(g.Number)
}

// ResetNet describes the reset network of a PLL. Asserting Signal retrains
// the PLL and every domain in Domains at the same time.
type ResetNet struct {
	Signal  string
	Domains []string
}

// Covers returns true if the named domain is driven by this reset net.
func (n ResetNet) Covers(domain string) bool {
	for _, d := range n.Domains {
		if d == domain {
			return true
		}
	}

	return false
}
