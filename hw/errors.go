package hw

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the sentinel matched by every ConfigurationError.
	ErrConfiguration = errors.New("hw: invalid configuration")

	// ErrResourceUnavailable is the sentinel matched by every
	// ResourceUnavailableError.
	ErrResourceUnavailable = errors.New("hw: resource unavailable")

	// ErrCapabilityExceeded is the sentinel matched by every
	// CapabilityExceededError.
	ErrCapabilityExceeded = errors.New("hw: capability exceeded")

	// ErrFrequencyOverflow indicates that a derived frequency does not fit in
	// a Freq.
	ErrFrequencyOverflow = fmt.Errorf("%w: frequency overflow", ErrConfiguration)
)

// ConfigurationError reports an invalid or contradictory input parameter.
type ConfigurationError struct {
	Param      string
	Value      string
	Constraint string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%q: %s",
		e.Param, e.Value, e.Constraint)
}

// Is makes the error match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ResourceUnavailableError reports a physical resource that the target
// platform does not have, or that has already been handed out.
type ResourceUnavailableError struct {
	Resource string
	Platform string
	Reason   string
}

func (e *ResourceUnavailableError) Error() string {
	return fmt.Sprintf("resource %q unavailable on %s: %s",
		e.Resource, e.Platform, e.Reason)
}

// Is makes the error match ErrResourceUnavailable.
func (e *ResourceUnavailableError) Is(target error) bool {
	return target == ErrResourceUnavailable
}

// CapabilityExceededError reports a clock request that the PLL cannot
// synthesize.
type CapabilityExceededError struct {
	Domain    string
	Quantity  string
	Requested string
	Min       string
	Max       string
}

func (e *CapabilityExceededError) Error() string {
	return fmt.Sprintf("cannot synthesize %s for %q: requested %s, "+
		"supported range [%s, %s]",
		e.Quantity, e.Domain, e.Requested, e.Min, e.Max)
}

// Is makes the error match ErrCapabilityExceeded.
func (e *CapabilityExceededError) Is(target error) bool {
	return target == ErrCapabilityExceeded
}
