package recording

import (
	"strings"

	"github.com/sarchlab/easysoc/soc"
)

// Table names used by RecordDescription.
const (
	DomainTable = "clock_domains"
	MemoryTable = "memory"
	PadTable    = "pads"
)

// DomainEntry is one clock domain of a recorded run.
type DomainEntry struct {
	RunID     string
	Board     string
	Name      string
	FreqHz    uint64
	PhaseDeg  int
	ResetLess bool
	DDRSource bool
}

// MemoryEntry is the SDRAM wiring of a recorded run.
type MemoryEntry struct {
	RunID       string
	Adapter     string
	PHY         string
	Rate        string
	Domains     string
	Module      string
	L2CacheSize int
	TRP         int
	TRCD        int
	TWR         int
	TRFC        int
	TREFI       int
}

// PadEntry is one pin group used by a recorded run.
type PadEntry struct {
	RunID      string
	Resource   string
	Number     int
	Pins       string
	IOStandard string
}

// RecordDescription writes the clock domains, the memory wiring and the pads
// of a description under the given run ID.
func RecordDescription(r DataRecorder, runID string, d *soc.Description) error {
	if err := createTables(r); err != nil {
		return err
	}

	ddr := d.DDROutput().Domain
	for _, cd := range d.Domains().Domains() {
		err := r.InsertData(DomainTable, DomainEntry{
			RunID:     runID,
			Board:     d.Board(),
			Name:      cd.Name,
			FreqHz:    uint64(cd.Freq),
			PhaseDeg:  int(cd.Phase),
			ResetLess: cd.IsResetLess(),
			DDRSource: cd.Name == ddr,
		})
		if err != nil {
			return err
		}
	}

	if mem, ok := d.Memory(); ok {
		err := r.InsertData(MemoryTable, MemoryEntry{
			RunID:       runID,
			Adapter:     mem.Adapter.Variant.String(),
			PHY:         mem.PHY,
			Rate:        mem.Rate,
			Domains:     strings.Join(mem.Adapter.RequiredDomains, ","),
			Module:      mem.Module,
			L2CacheSize: mem.L2CacheSize,
			TRP:         mem.Timings.TRP,
			TRCD:        mem.Timings.TRCD,
			TWR:         mem.Timings.TWR,
			TRFC:        mem.Timings.TRFC,
			TREFI:       mem.Timings.TREFI,
		})
		if err != nil {
			return err
		}
	}

	for _, g := range d.Pads() {
		pins := append([]string(nil), g.Pins...)
		for _, s := range g.Subsignals {
			for _, p := range s.Pins {
				pins = append(pins, s.Name+"="+p)
			}
		}

		err := r.InsertData(PadTable, PadEntry{
			RunID:      runID,
			Resource:   g.Name,
			Number:     g.Number,
			Pins:       strings.Join(pins, " "),
			IOStandard: g.IOStandard,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func createTables(r DataRecorder) error {
	if err := r.CreateTable(DomainTable, DomainEntry{}); err != nil {
		return err
	}

	if err := r.CreateTable(MemoryTable, MemoryEntry{}); err != nil {
		return err
	}

	return r.CreateTable(PadTable, PadEntry{})
}
