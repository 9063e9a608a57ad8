// Package build turns a resolved SoC description into files for the Quartus
// toolchain, and drives synthesis and programming.
package build

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"

	"github.com/sarchlab/easysoc/hooking"
	"github.com/sarchlab/easysoc/platform"
	"github.com/sarchlab/easysoc/soc"
)

// Tools of the Quartus toolchain.
const (
	SynthesisTool = "quartus_sh"
)

// ErrMissingBitstream is returned when loading a build that has not been
// compiled.
var ErrMissingBitstream = errors.New("bitstream not found")

var (
	// HookPosArtifactWritten fires after a file is written. The item is the
	// file path.
	HookPosArtifactWritten = &hooking.HookPos{Name: "ArtifactWritten"}

	// HookPosToolStarted fires before an external tool runs. The item is the
	// tool and the detail the arguments.
	HookPosToolStarted = &hooking.HookPos{Name: "ToolStarted"}
)

// Artifacts lists the files of one build.
type Artifacts struct {
	BuildID   string
	Board     string
	Dir       string
	Manifest  string
	QSF       string
	SDC       string
	Bitstream string
}

// BuildManifest is the content of the manifest file.
type BuildManifest struct {
	BuildID string       `json:"build_id"`
	SoC     soc.Manifest `json:"soc"`
}

// Toolchain writes build trees and runs the vendor tools on them.
type Toolchain struct {
	*hooking.HookableBase

	name         string
	outputDir    string
	toolchainDir string
	runner       Runner
}

// Name returns the name of the toolchain.
func (t *Toolchain) Name() string {
	return t.name
}

// GatewareDir returns the directory that holds the files of a board.
func (t *Toolchain) GatewareDir(board string) string {
	return filepath.Join(t.outputDir, board, "gateware")
}

// Generate writes the manifest, pin assignments and timing constraints of
// the description.
func (t *Toolchain) Generate(d *soc.Description) (Artifacts, error) {
	board := d.Board()
	dir := t.GatewareDir(board)

	a := Artifacts{
		BuildID:   xid.New().String(),
		Board:     board,
		Dir:       dir,
		Manifest:  filepath.Join(dir, board+".json"),
		QSF:       filepath.Join(dir, board+".qsf"),
		SDC:       filepath.Join(dir, board+".sdc"),
		Bitstream: filepath.Join(dir, board+".sof"),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("build: %w", err)
	}

	manifest, err := json.MarshalIndent(BuildManifest{
		BuildID: a.BuildID,
		SoC:     d.Manifest(),
	}, "", "  ")
	if err != nil {
		return Artifacts{}, fmt.Errorf("build: %w", err)
	}

	files := []struct {
		path    string
		content []byte
	}{
		{a.Manifest, append(manifest, '\n')},
		{a.QSF, pinAssignments(d)},
		{a.SDC, timingConstraints(d)},
	}

	for _, f := range files {
		if err := t.write(f.path, f.content); err != nil {
			return Artifacts{}, err
		}
	}

	return a, nil
}

func (t *Toolchain) write(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosArtifactWritten,
		Item:   path,
	})

	return nil
}

// Compile runs synthesis, place and route, and bitstream assembly.
func (t *Toolchain) Compile(a Artifacts) error {
	return t.run(a.Dir, SynthesisTool, "--flow", "compile", a.Board)
}

// Load programs the board over JTAG with the compiled bitstream.
func (t *Toolchain) Load(a Artifacts, p platform.Programmer) error {
	if _, err := os.Stat(a.Bitstream); err != nil {
		return fmt.Errorf("build: %s: %w", a.Bitstream, ErrMissingBitstream)
	}

	return t.run(a.Dir, p.Command,
		"-m", "jtag",
		"-c", p.Cable,
		"-o", "p;"+filepath.Base(a.Bitstream))
}

func (t *Toolchain) run(dir, tool string, args ...string) error {
	if t.toolchainDir != "" {
		tool = filepath.Join(t.toolchainDir, tool)
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosToolStarted,
		Item:   tool,
		Detail: args,
	})

	return t.runner.Run(dir, tool, args...)
}

// PinName returns the top-level port name of a pin of a signal group. Pins
// of a multi-pin signal get an index.
func PinName(group, subsignal string, index, width int) string {
	name := group
	if subsignal != "" {
		name += "_" + subsignal
	}

	if width > 1 {
		name = fmt.Sprintf("%s[%d]", name, index)
	}

	return name
}

func pinAssignments(d *soc.Description) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "set_global_assignment -name FAMILY \"Cyclone IV E\"\n")
	fmt.Fprintf(&buf, "set_global_assignment -name DEVICE %s\n", d.Device())
	fmt.Fprintf(&buf, "set_global_assignment -name TOP_LEVEL_ENTITY %s\n",
		d.Board())
	fmt.Fprintf(&buf, "set_global_assignment -name SDC_FILE %s.sdc\n",
		d.Board())

	pads := d.Pads()
	instances := make(map[string]int)

	for _, g := range pads {
		instances[g.Name]++
	}

	for _, g := range pads {
		base := g.Name
		if instances[g.Name] > 1 {
			base = fmt.Sprintf("%s%d", g.Name, g.Number)
		}

		for i, pin := range g.Pins {
			assignPin(&buf, PinName(base, "", i, len(g.Pins)), pin, g.IOStandard)
		}

		for _, s := range g.Subsignals {
			for i, pin := range s.Pins {
				assignPin(&buf, PinName(base, s.Name, i, len(s.Pins)),
					pin, g.IOStandard)
			}
		}
	}

	return buf.Bytes()
}

func assignPin(buf *bytes.Buffer, port, pin, ioStandard string) {
	fmt.Fprintf(buf, "set_location_assignment %s -to %s\n", pin, port)

	if ioStandard != "" {
		fmt.Fprintf(buf,
			"set_instance_assignment -name IO_STANDARD %q -to %s\n",
			ioStandard, port)
	}
}

func timingConstraints(d *soc.Description) []byte {
	var buf bytes.Buffer

	ref := d.ReferenceClock()
	fmt.Fprintf(&buf, "create_clock -name %s -period %.3f [get_ports {%s}]\n",
		ref.Name, ref.Freq.PeriodNS(), ref.Name)

	for _, cd := range d.Domains().Domains() {
		fmt.Fprintf(&buf, "# %s: %s, phase %v\n", cd.Name, cd.Freq, cd.Phase)
	}

	buf.WriteString("derive_pll_clocks\n")
	buf.WriteString("derive_clock_uncertainty\n")

	return buf.Bytes()
}
