// Package cmd provides the command-line interface of easysoc.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/easysoc/build"
	"github.com/sarchlab/easysoc/hooking"
	"github.com/sarchlab/easysoc/hw"
	"github.com/sarchlab/easysoc/inspect"
	"github.com/sarchlab/easysoc/platform"
	"github.com/sarchlab/easysoc/pll"
	"github.com/sarchlab/easysoc/recording"
	"github.com/sarchlab/easysoc/sdram"
	"github.com/sarchlab/easysoc/soc"
)

// Environment variables read from the process or from a .env file.
const (
	EnvQuartusBin = "EASYSOC_QUARTUS_BIN"
	EnvOutputDir  = "EASYSOC_OUTPUT_DIR"
)

type options struct {
	build        bool
	load         bool
	sysClkFreq   float64
	sdramRate    string
	cpuType      string
	cpuVariant   string
	romSize      uint64
	sramSize     uint64
	mainRAMSize  uint64
	noLEDChaser  bool
	sysPSPhase   int
	sys2xPSPhase int
	outputDir    string
	record       string
	recordDB     string
	recordDSN    string
	inspect      bool
	inspectPort  int
	quiet        bool

	config     soc.Config
	quartusBin string
}

// NewRootCmd creates the easysoc command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "easysoc",
		Short: "Resolve and build a LiteX SoC for the RZ-EasyFPGA board.",
		Long: `easysoc resolves the clock domains and the SDRAM wiring of a ` +
			`LiteX SoC on the RZ-EasyFPGA (Cyclone IV) board, writes the ` +
			`build tree, and optionally synthesizes and loads the bitstream.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	f := rootCmd.Flags()
	f.BoolVar(&opts.build, "build", false, "Build the bitstream.")
	f.BoolVar(&opts.load, "load", false, "Load the bitstream onto the board.")
	f.Float64Var(&opts.sysClkFreq, "sys-clk-freq", 50e6,
		"System clock frequency in Hz.")
	f.StringVar(&opts.sdramRate, "sdram-rate", "1:1",
		"SDRAM rate, 1:1 (full rate) or 1:2 (half rate).")
	f.StringVar(&opts.cpuType, "cpu-type", soc.DefaultCPUType, "CPU type.")
	f.StringVar(&opts.cpuVariant, "cpu-variant", "standard", "CPU variant.")
	f.Uint64Var(&opts.romSize, "integrated-rom-size", 0,
		"Requested integrated ROM size in bytes.")
	f.Uint64Var(&opts.sramSize, "integrated-sram-size", 0,
		"Requested integrated SRAM size in bytes.")
	f.Uint64Var(&opts.mainRAMSize, "integrated-main-ram-size", 0,
		"Use on-chip main RAM of this size instead of the SDRAM.")
	f.BoolVar(&opts.noLEDChaser, "no-led-chaser", false,
		"Do not drive the user LEDs.")
	f.IntVar(&opts.sysPSPhase, "sys-ps-phase", 180,
		"Phase of sys_ps in degrees (full rate).")
	f.IntVar(&opts.sys2xPSPhase, "sys2x-ps-phase", 270,
		"Phase of sys2x_ps in degrees (half rate).")
	f.StringVar(&opts.outputDir, "output-dir", "build",
		"Base directory of the build tree.")
	f.StringVar(&opts.record, "record", "",
		"Record the resolved SoC into <path>.sqlite3.")
	f.StringVar(&opts.recordDB, "record-backend", recording.BackendSQLite,
		"Recording backend, sqlite or clickhouse.")
	f.StringVar(&opts.recordDSN, "record-dsn", "",
		"ClickHouse DSN used by the clickhouse recording backend.")
	f.BoolVar(&opts.inspect, "inspect", false,
		"Serve the resolved SoC over HTTP until interrupted.")
	f.IntVar(&opts.inspectPort, "inspect-port", 0,
		"Port of the inspector, random if 0.")
	f.BoolVarP(&opts.quiet, "quiet", "q", false,
		"Do not log resolution steps.")

	return rootCmd
}

// Execute runs the easysoc command and exits with status 1 on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func (o *options) prepare(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	if dir, ok := os.LookupEnv(EnvOutputDir); ok &&
		!cmd.Flags().Changed("output-dir") {
		o.outputDir = dir
	}

	o.quartusBin = os.Getenv(EnvQuartusBin)

	if o.recordDB != recording.BackendSQLite &&
		o.recordDB != recording.BackendClickHouse {
		return &hw.ConfigurationError{
			Param:      "record_backend",
			Value:      o.recordDB,
			Constraint: "must be sqlite or clickhouse",
		}
	}

	mode, err := sdram.ParseTimingMode(o.sdramRate)
	if err != nil {
		return err
	}

	sysFreq, err := hw.FreqFromFloat(o.sysClkFreq)
	if err != nil {
		return err
	}

	cfg := soc.DefaultConfig()
	cfg.SystemClock = sysFreq
	cfg.TimingMode = mode
	cfg.CPUType = o.cpuType
	cfg.CPUVariant = o.cpuVariant
	cfg.ROMSize = o.romSize
	cfg.SRAMSize = o.sramSize
	cfg.IntegratedMainRAMSize = o.mainRAMSize
	cfg.WithLEDChaser = !o.noLEDChaser
	cfg.Phases.SysPS = hw.Phase(o.sysPSPhase)
	cfg.Phases.Sys2xPS = hw.Phase(o.sys2xPSPhase)

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.config = cfg

	return nil
}

func (o *options) run(cmd *cobra.Command) error {
	var inspector *inspect.Inspector
	if o.inspect {
		inspector = inspect.NewInspector().
			WithPortNumber(o.inspectPort).
			WithBrowser()
	}

	composerBuilder := soc.MakeBuilder().
		WithPLLFactory(func(name string) hw.PLL {
			p := pll.MakeBuilder().Build(name)
			if inspector != nil {
				inspector.RegisterComponent(p)
			}

			return p
		})
	toolchainBuilder := build.MakeBuilder().
		WithOutputDir(o.outputDir).
		WithToolchainDir(o.quartusBin)

	if !o.quiet {
		logHook := hooking.NewLogHook(log.New(cmd.ErrOrStderr(), "", 0))
		composerBuilder = composerBuilder.WithAdditionalHooks(logHook)
		toolchainBuilder = toolchainBuilder.WithAdditionalHooks(logHook)
	}

	board := platform.NewEasyFPGA()

	desc, err := composerBuilder.Build("soc").Compose(o.config, board)
	if err != nil {
		return err
	}

	toolchain := toolchainBuilder.Build("quartus")

	artifacts, err := toolchain.Generate(desc)
	if err != nil {
		return err
	}

	if o.wantsRecording() {
		if err := o.recordDescription(artifacts.BuildID, desc); err != nil {
			return err
		}
	}

	if o.build {
		if err := toolchain.Compile(artifacts); err != nil {
			return err
		}
	}

	if o.load {
		if err := toolchain.Load(artifacts, board.Programmer()); err != nil {
			return err
		}
	}

	if inspector != nil {
		return o.serve(cmd, inspector, desc)
	}

	return nil
}

func (o *options) wantsRecording() bool {
	return o.record != "" || o.recordDB == recording.BackendClickHouse
}

func (o *options) recordDescription(runID string, d *soc.Description) error {
	r, err := recording.NewWithConfig(recording.Config{
		Type:    o.recordDB,
		Path:    o.record,
		ConnStr: o.recordDSN,
	})
	if err != nil {
		return err
	}

	if err := recording.RecordDescription(r, runID, d); err != nil {
		return err
	}

	return r.Close()
}

func (o *options) serve(
	cmd *cobra.Command,
	inspector *inspect.Inspector,
	d *soc.Description,
) error {
	inspector.RegisterDescription(d)

	if _, err := inspector.StartServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	<-ctx.Done()

	return inspector.StopServer()
}
