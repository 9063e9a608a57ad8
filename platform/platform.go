// Package platform models the physical resources of a board. A resource can
// be requested once; later requests for the same resource fail like they
// would on a real pin-constraint manager.
package platform

import (
	"sort"
	"strings"

	"github.com/sarchlab/easysoc/hw"
)

// Resource is a pin group that a board offers.
type Resource struct {
	Name       string
	Number     int
	Pins       []string
	Subsignals []hw.Subsignal
	IOStandard string
}

func (r Resource) signalGroup() hw.SignalGroup {
	g := hw.SignalGroup{
		Name:       r.Name,
		Number:     r.Number,
		IOStandard: r.IOStandard,
	}
	g.Pins = append(g.Pins, r.Pins...)

	for _, s := range r.Subsignals {
		g.Subsignals = append(g.Subsignals, hw.Subsignal{
			Name: s.Name,
			Pins: append([]string(nil), s.Pins...),
		})
	}

	return g
}

// Programmer describes how a bitstream is loaded onto the board.
type Programmer struct {
	Command string
	Cable   string
}

// Board is a platform built from a fixed resource catalog. It implements
// hw.Platform.
type Board struct {
	name       string
	device     string
	defaultClk string
	programmer Programmer
	resources  []Resource
	used       map[string]bool
}

// NewBoard creates a board with the given catalog.
func NewBoard(
	name, device, defaultClk string,
	programmer Programmer,
	resources []Resource,
) *Board {
	return &Board{
		name:       name,
		device:     device,
		defaultClk: defaultClk,
		programmer: programmer,
		resources:  append([]Resource(nil), resources...),
		used:       make(map[string]bool),
	}
}

// Name returns the board name.
func (b *Board) Name() string {
	return b.name
}

// Device returns the FPGA part number.
func (b *Board) Device() string {
	return b.device
}

// DefaultClockName returns the name of the on-board oscillator resource.
func (b *Board) DefaultClockName() string {
	return b.defaultClk
}

// Programmer returns how bitstreams are loaded onto this board.
func (b *Board) Programmer() Programmer {
	return b.programmer
}

// RequestResource returns the unused resource with the lowest number among
// those with the given name.
func (b *Board) RequestResource(name string) (hw.SignalGroup, error) {
	found := false

	for _, r := range b.sortedResources() {
		if r.Name != name {
			continue
		}

		found = true
		key := r.signalGroup().ID()
		if b.used[key] {
			continue
		}

		b.used[key] = true

		return r.signalGroup(), nil
	}

	reason := "no such resource"
	if found {
		reason = "all instances already requested"
	}

	return hw.SignalGroup{}, &hw.ResourceUnavailableError{
		Resource: name,
		Platform: b.name,
		Reason:   reason,
	}
}

// RequestAllResources returns every unused resource whose name starts with
// prefix, ordered by name and number.
func (b *Board) RequestAllResources(prefix string) ([]hw.SignalGroup, error) {
	var groups []hw.SignalGroup

	for _, r := range b.sortedResources() {
		if !strings.HasPrefix(r.Name, prefix) {
			continue
		}

		key := r.signalGroup().ID()
		if b.used[key] {
			continue
		}

		b.used[key] = true
		groups = append(groups, r.signalGroup())
	}

	if len(groups) == 0 {
		return nil, &hw.ResourceUnavailableError{
			Resource: prefix + "*",
			Platform: b.name,
			Reason:   "no unused resource matches the prefix",
		}
	}

	return groups, nil
}

// ReleaseResources marks the groups as unused again.
func (b *Board) ReleaseResources(groups ...hw.SignalGroup) {
	for _, g := range groups {
		delete(b.used, g.ID())
	}
}

// Requested returns the IDs of the resources handed out so far, sorted.
func (b *Board) Requested() []string {
	ids := make([]string, 0, len(b.used))
	for id := range b.used {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Lookup finds a resource in the catalog without requesting it.
func (b *Board) Lookup(name string, number int) (Resource, bool) {
	for _, r := range b.resources {
		if r.Name == name && r.Number == number {
			return r, true
		}
	}

	return Resource{}, false
}

func (b *Board) sortedResources() []Resource {
	rs := append([]Resource(nil), b.resources...)
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Name != rs[j].Name {
			return rs[i].Name < rs[j].Name
		}

		return rs[i].Number < rs[j].Number
	})

	return rs
}

var _ hw.Platform = (*Board)(nil)
