package hw

import (
	"fmt"
	"strings"
)

// SysDomainName is the name of the core clock domain every SoC must have.
const SysDomainName = "sys"

// PhaseShiftedSuffix marks domains that feed DDR output stages. Such domains
// must never be reset.
const PhaseShiftedSuffix = "_ps"

// ResetPolicy tells whether a clock domain is part of the reset network.
type ResetPolicy int

// Reset policies.
const (
	Resettable ResetPolicy = iota
	ResetLess
)

func (p ResetPolicy) String() string {
	switch p {
	case Resettable:
		return "resettable"
	case ResetLess:
		return "reset-less"
	default:
		return fmt.Sprintf("ResetPolicy(%d)", int(p))
	}
}

// ClockDomain is a named clock under which synchronous logic runs.
type ClockDomain struct {
	Name  string
	Freq  Freq
	Phase Phase
	Reset ResetPolicy
}

// IsResetLess returns true if the domain is excluded from the reset network.
func (d ClockDomain) IsResetLess() bool {
	return d.Reset == ResetLess
}

func (d ClockDomain) String() string {
	return fmt.Sprintf("%s@%s/%s/%s", d.Name, d.Freq, d.Phase, d.Reset)
}

// ClockDomainSet is an ordered collection of uniquely named clock domains.
type ClockDomainSet struct {
	domains []ClockDomain
	index   map[string]int
}

// NewClockDomainSet creates an empty set.
func NewClockDomainSet() *ClockDomainSet {
	return &ClockDomainSet{
		index: make(map[string]int),
	}
}

// Add appends a domain. It fails if a domain with the same name exists or if
// the domain breaks the reset policy of phase-shifted domains.
func (s *ClockDomainSet) Add(d ClockDomain) error {
	if d.Name == "" {
		return &ConfigurationError{
			Param:      "domain",
			Value:      d.Name,
			Constraint: "domain name must not be empty",
		}
	}

	if _, exists := s.index[d.Name]; exists {
		return &ConfigurationError{
			Param:      "domain",
			Value:      d.Name,
			Constraint: "domain names must be unique",
		}
	}

	if strings.HasSuffix(d.Name, PhaseShiftedSuffix) && !d.IsResetLess() {
		return &ConfigurationError{
			Param:      "domain",
			Value:      d.Name,
			Constraint: "phase-shifted domains must be reset-less",
		}
	}

	if d.Freq == 0 {
		return &ConfigurationError{
			Param:      "domain",
			Value:      d.Name,
			Constraint: "domain frequency must be positive",
		}
	}

	s.index[d.Name] = len(s.domains)
	s.domains = append(s.domains, d)

	return nil
}

// Get looks up a domain by name.
func (s *ClockDomainSet) Get(name string) (ClockDomain, bool) {
	i, ok := s.index[name]
	if !ok {
		return ClockDomain{}, false
	}

	return s.domains[i], true
}

// Has returns true if a domain with the given name exists.
func (s *ClockDomainSet) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of domains.
func (s *ClockDomainSet) Len() int {
	return len(s.domains)
}

// Domains returns a copy of the domains in creation order.
func (s *ClockDomainSet) Domains() []ClockDomain {
	out := make([]ClockDomain, len(s.domains))
	copy(out, s.domains)

	return out
}

// Names returns the domain names in creation order.
func (s *ClockDomainSet) Names() []string {
	names := make([]string, 0, len(s.domains))
	for _, d := range s.domains {
		names = append(names, d.Name)
	}

	return names
}

// Contains reports whether every given name is a domain of the set. The
// second return value lists the names that are missing.
func (s *ClockDomainSet) Contains(names ...string) (bool, []string) {
	var missing []string

	for _, n := range names {
		if !s.Has(n) {
			missing = append(missing, n)
		}
	}

	return len(missing) == 0, missing
}

// Validate checks the invariants of a complete set: exactly one resettable
// "sys" domain and reset-less phase-shifted domains.
func (s *ClockDomainSet) Validate() error {
	sys, ok := s.Get(SysDomainName)
	if !ok {
		return &ConfigurationError{
			Param:      "domain",
			Value:      SysDomainName,
			Constraint: "a sys domain is required",
		}
	}

	if sys.IsResetLess() {
		return &ConfigurationError{
			Param:      "domain",
			Value:      SysDomainName,
			Constraint: "the sys domain must be resettable",
		}
	}

	for _, d := range s.domains {
		if strings.HasSuffix(d.Name, PhaseShiftedSuffix) && !d.IsResetLess() {
			return &ConfigurationError{
				Param:      "domain",
				Value:      d.Name,
				Constraint: "phase-shifted domains must be reset-less",
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the set.
func (s *ClockDomainSet) Clone() *ClockDomainSet {
	c := NewClockDomainSet()
	for _, d := range s.domains {
		c.index[d.Name] = len(c.domains)
		c.domains = append(c.domains, d)
	}

	return c
}
