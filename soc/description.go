package soc

import (
	"github.com/sarchlab/easysoc/hw"
	"github.com/sarchlab/easysoc/sdram"
)

// DDROutput is a DDR output register that forwards a clock domain to a pad.
type DDROutput struct {
	Domain string
	Pad    string
}

// MemoryWiring is the SDRAM PHY and controller wired to the clock domains.
type MemoryWiring struct {
	Name        string
	Adapter     sdram.AdapterSpec
	PHY         string
	Rate        string
	Module      string
	Geometry    sdram.Geometry
	Timings     sdram.Timings
	Freq        hw.Freq
	Pads        hw.SignalGroup
	L2CacheSize int
}

// Peripheral is an IP block bound to a clock domain.
type Peripheral struct {
	Kind   string
	Name   string
	Domain string
	Freq   hw.Freq
	Pads   []hw.SignalGroup
}

// Description is a resolved SoC. It is immutable: accessors return copies.
type Description struct {
	ident       string
	board       string
	device      string
	cpu         CPU
	romSize     uint64
	sramSize    uint64
	mainRAMSize uint64
	refClock    hw.ClockSignal
	domains     *hw.ClockDomainSet
	ddrOutput   DDROutput
	resetNet    hw.ResetNet
	memory      *MemoryWiring
	peripherals []Peripheral
	pads        []hw.SignalGroup
}

// Ident returns the identifier string of the SoC.
func (d *Description) Ident() string { return d.ident }

// Board returns the board name.
func (d *Description) Board() string { return d.board }

// Device returns the FPGA part number.
func (d *Description) Device() string { return d.device }

// CPU returns the selected soft core.
func (d *Description) CPU() CPU { return d.cpu }

// ROMSize returns the integrated ROM size in bytes.
func (d *Description) ROMSize() uint64 { return d.romSize }

// SRAMSize returns the integrated SRAM size in bytes.
func (d *Description) SRAMSize() uint64 { return d.sramSize }

// IntegratedMainRAMSize returns the size of on-chip main RAM, 0 if main
// memory is external.
func (d *Description) IntegratedMainRAMSize() uint64 { return d.mainRAMSize }

// ReferenceClock returns the board oscillator clock.
func (d *Description) ReferenceClock() hw.ClockSignal { return d.refClock }

// Domains returns a copy of the clock domains.
func (d *Description) Domains() *hw.ClockDomainSet { return d.domains.Clone() }

// DDROutput returns the DDR clock output.
func (d *Description) DDROutput() DDROutput { return d.ddrOutput }

// ResetNet returns the reset network shared by all clock domains.
func (d *Description) ResetNet() hw.ResetNet {
	n := d.resetNet
	n.Domains = append([]string(nil), d.resetNet.Domains...)

	return n
}

// Memory returns the SDRAM wiring. The second value is false when main
// memory is on-chip.
func (d *Description) Memory() (MemoryWiring, bool) {
	if d.memory == nil {
		return MemoryWiring{}, false
	}

	m := *d.memory
	m.Adapter.RequiredDomains = append([]string(nil),
		d.memory.Adapter.RequiredDomains...)
	m.Pads = cloneGroup(d.memory.Pads)

	return m, true
}

// Peripherals returns the wired peripherals.
func (d *Description) Peripherals() []Peripheral {
	out := make([]Peripheral, 0, len(d.peripherals))
	for _, p := range d.peripherals {
		c := p
		c.Pads = cloneGroups(p.Pads)
		out = append(out, c)
	}

	return out
}

// Pads returns every pin group the SoC uses, in request order.
func (d *Description) Pads() []hw.SignalGroup {
	return cloneGroups(d.pads)
}

func cloneGroups(gs []hw.SignalGroup) []hw.SignalGroup {
	if gs == nil {
		return nil
	}

	out := make([]hw.SignalGroup, 0, len(gs))
	for _, g := range gs {
		out = append(out, cloneGroup(g))
	}

	return out
}

func cloneGroup(g hw.SignalGroup) hw.SignalGroup {
	c := g
	c.Pins = append([]string(nil), g.Pins...)
	c.Subsignals = nil

	for _, s := range g.Subsignals {
		c.Subsignals = append(c.Subsignals, hw.Subsignal{
			Name: s.Name,
			Pins: append([]string(nil), s.Pins...),
		})
	}

	return c
}
