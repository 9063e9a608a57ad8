package soc

import "github.com/sarchlab/easysoc/hw"

// Manifest is the serializable form of a Description.
type Manifest struct {
	Ident                 string            `json:"ident"`
	Board                 string            `json:"board"`
	Device                string            `json:"device"`
	CPUType               string            `json:"cpu_type"`
	CPUVariant            string            `json:"cpu_variant"`
	ROMSize               uint64            `json:"integrated_rom_size"`
	SRAMSize              uint64            `json:"integrated_sram_size"`
	IntegratedMainRAMSize uint64            `json:"integrated_main_ram_size"`
	ReferenceClock        ClockManifest     `json:"reference_clock"`
	Domains               []DomainManifest  `json:"clock_domains"`
	DDROutput             DDROutput         `json:"ddr_output"`
	ResetSignal           string            `json:"reset_signal"`
	Memory                *MemoryManifest   `json:"memory,omitempty"`
	Peripherals           []PeripheralEntry `json:"peripherals"`
	Pads                  []hw.SignalGroup  `json:"pads"`
}

// ClockManifest is a clock in a manifest.
type ClockManifest struct {
	Name   string `json:"name"`
	FreqHz uint64 `json:"freq_hz"`
}

// DomainManifest is a clock domain in a manifest.
type DomainManifest struct {
	Name      string `json:"name"`
	FreqHz    uint64 `json:"freq_hz"`
	PhaseDeg  int    `json:"phase_deg"`
	ResetLess bool   `json:"reset_less"`
}

// MemoryManifest is the SDRAM wiring in a manifest.
type MemoryManifest struct {
	Adapter     string   `json:"adapter"`
	PHY         string   `json:"phy"`
	Rate        string   `json:"rate"`
	Domains     []string `json:"domains"`
	Module      string   `json:"module"`
	SizeBytes   uint64   `json:"size_bytes"`
	L2CacheSize int      `json:"l2_cache_size"`
	TRP         int      `json:"trp"`
	TRCD        int      `json:"trcd"`
	TWR         int      `json:"twr"`
	TRFC        int      `json:"trfc"`
	TWTR        int      `json:"twtr"`
	TCCD        int      `json:"tccd"`
	TRRD        int      `json:"trrd"`
	TREFI       int      `json:"trefi"`
}

// PeripheralEntry is a peripheral in a manifest.
type PeripheralEntry struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	Domain string   `json:"domain"`
	Pads   []string `json:"pads"`
}

// Manifest flattens the description.
func (d *Description) Manifest() Manifest {
	m := Manifest{
		Ident:                 d.ident,
		Board:                 d.board,
		Device:                d.device,
		CPUType:               d.cpu.Type,
		CPUVariant:            d.cpu.Variant,
		ROMSize:               d.romSize,
		SRAMSize:              d.sramSize,
		IntegratedMainRAMSize: d.mainRAMSize,
		ReferenceClock: ClockManifest{
			Name:   d.refClock.Name,
			FreqHz: uint64(d.refClock.Freq),
		},
		DDROutput:   d.ddrOutput,
		ResetSignal: d.resetNet.Signal,
		Pads:        d.Pads(),
	}

	for _, cd := range d.domains.Domains() {
		m.Domains = append(m.Domains, DomainManifest{
			Name:      cd.Name,
			FreqHz:    uint64(cd.Freq),
			PhaseDeg:  int(cd.Phase),
			ResetLess: cd.IsResetLess(),
		})
	}

	if mem, ok := d.Memory(); ok {
		m.Memory = &MemoryManifest{
			Adapter:     mem.Adapter.Variant.String(),
			PHY:         mem.PHY,
			Rate:        mem.Rate,
			Domains:     mem.Adapter.RequiredDomains,
			Module:      mem.Module,
			SizeBytes:   mem.Geometry.SizeBytes(),
			L2CacheSize: mem.L2CacheSize,
			TRP:         mem.Timings.TRP,
			TRCD:        mem.Timings.TRCD,
			TWR:         mem.Timings.TWR,
			TRFC:        mem.Timings.TRFC,
			TWTR:        mem.Timings.TWTR,
			TCCD:        mem.Timings.TCCD,
			TRRD:        mem.Timings.TRRD,
			TREFI:       mem.Timings.TREFI,
		}
	}

	for _, p := range d.peripherals {
		e := PeripheralEntry{Kind: p.Kind, Name: p.Name, Domain: p.Domain}
		for _, g := range p.Pads {
			e.Pads = append(e.Pads, g.ID())
		}

		m.Peripherals = append(m.Peripherals, e)
	}

	return m
}
