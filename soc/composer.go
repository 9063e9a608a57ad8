// Package soc composes a complete SoC description from a configuration and
// a board.
package soc

import (
	"fmt"

	"github.com/sarchlab/easysoc/crg"
	"github.com/sarchlab/easysoc/hooking"
	"github.com/sarchlab/easysoc/hw"
	"github.com/sarchlab/easysoc/pll"
	"github.com/sarchlab/easysoc/sdram"
)

// Ident is the identifier string embedded in the SoC.
const Ident = "LiteX SoC on RZ-EasyFPGA"

// Hook positions of the composer.
var (
	// HookPosConstraintApplied fires when a size limit replaces a requested
	// value. The item is the parameter name and the detail the applied size.
	HookPosConstraintApplied = &hooking.HookPos{Name: "ConstraintApplied"}

	// HookPosCPUSelected fires with the selected CPU.
	HookPosCPUSelected = &hooking.HookPos{Name: "CPUSelected"}

	// HookPosMemoryWired fires with the MemoryWiring.
	HookPosMemoryWired = &hooking.HookPos{Name: "MemoryWired"}

	// HookPosMemorySkipped fires when main memory is on-chip.
	HookPosMemorySkipped = &hooking.HookPos{Name: "MemorySkipped"}

	// HookPosPeripheralWired fires with each Peripheral.
	HookPosPeripheralWired = &hooking.HookPos{Name: "PeripheralWired"}
)

// PLLFactory creates the PLL a composition uses.
type PLLFactory func(name string) hw.PLL

// DefaultPLLFactory creates simulated Cyclone IV PLLs.
func DefaultPLLFactory(name string) hw.PLL {
	return pll.MakeBuilder().Build(name)
}

// Builder can build composers.
type Builder struct {
	pllFactory  PLLFactory
	limits      DeviceLimits
	refClockPad string
	ddrClockPad string
	memoryPad   string
	ledPrefix   string
	hooks       []hooking.Hook
}

// MakeBuilder creates a builder for the RZ-EasyFPGA.
func MakeBuilder() Builder {
	return Builder{
		pllFactory:  DefaultPLLFactory,
		limits:      EasyFPGALimits,
		refClockPad: "clk50",
		ddrClockPad: "sdram_clock",
		memoryPad:   "sdram",
		ledPrefix:   "user_led",
	}
}

// WithPLLFactory sets how PLLs are created.
func (b Builder) WithPLLFactory(f PLLFactory) Builder {
	b.pllFactory = f
	return b
}

// WithDeviceLimits sets the on-chip memory limits of the device.
func (b Builder) WithDeviceLimits(l DeviceLimits) Builder {
	b.limits = l
	return b
}

// WithReferenceClockPad sets the resource name of the board oscillator.
func (b Builder) WithReferenceClockPad(name string) Builder {
	b.refClockPad = name
	return b
}

// WithAdditionalHooks adds a hook to the composer and to the clock and reset
// generators it creates.
func (b Builder) WithAdditionalHooks(h hooking.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.pllFactory == nil {
		panic("a PLL factory is required")
	}

	if b.limits.ROMSize == 0 || b.limits.SRAMSize == 0 {
		panic("device limits must be set")
	}
}

// Build creates a new composer.
func (b Builder) Build(name string) *Composer {
	b.parametersMustBeValid()

	c := &Composer{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		pllFactory:   b.pllFactory,
		limits:       b.limits,
		refClockPad:  b.refClockPad,
		ddrClockPad:  b.ddrClockPad,
		memoryPad:    b.memoryPad,
		ledPrefix:    b.ledPrefix,
		hooks:        append([]hooking.Hook(nil), b.hooks...),
	}

	for _, h := range b.hooks {
		c.AcceptHook(h)
	}

	return c
}

// Composer turns a Config into a Description.
type Composer struct {
	*hooking.HookableBase

	name        string
	pllFactory  PLLFactory
	limits      DeviceLimits
	refClockPad string
	ddrClockPad string
	memoryPad   string
	ledPrefix   string
	hooks       []hooking.Hook
}

// Name returns the name of the composer.
func (c *Composer) Name() string {
	return c.name
}

// Compose resolves the configuration against the platform. It either returns
// a complete description or an error, never a partial description. On error,
// the resources requested so far are given back to the platform.
func (c *Composer) Compose(cfg Config, p hw.Platform) (*Description, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Description{
		ident:       Ident,
		board:       p.Name(),
		device:      p.Device(),
		mainRAMSize: cfg.IntegratedMainRAMSize,
	}

	c.applyLimits(cfg, d)
	c.selectCPU(cfg, d)

	steps := []func(Config, hw.Platform, *Description) error{
		c.resolveClocks,
		c.wireMemory,
		c.wireLEDChaser,
	}

	for _, step := range steps {
		if err := step(cfg, p, d); err != nil {
			if len(d.pads) > 0 {
				p.ReleaseResources(d.pads...)
			}

			return nil, err
		}
	}

	return d, nil
}

func (c *Composer) applyLimits(cfg Config, d *Description) {
	d.romSize = c.limits.ROMSize
	d.sramSize = c.limits.SRAMSize

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosConstraintApplied,
		Item:   "integrated_rom_size",
		Detail: fmt.Sprintf("requested %#x, using %#x", cfg.ROMSize, d.romSize),
	})
	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosConstraintApplied,
		Item:   "integrated_sram_size",
		Detail: fmt.Sprintf("requested %#x, using %#x", cfg.SRAMSize, d.sramSize),
	})
}

func (c *Composer) selectCPU(cfg Config, d *Description) {
	d.cpu = SelectCPU(cfg.CPUType, cfg.CPUVariant)

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosCPUSelected,
		Item:   d.cpu.Type + ":" + d.cpu.Variant,
	})
}

func (c *Composer) resolveClocks(
	cfg Config,
	p hw.Platform,
	d *Description,
) error {
	refPad, err := p.RequestResource(c.refClockPad)
	if err != nil {
		return fmt.Errorf("soc %s: reference clock: %w", c.name, err)
	}

	d.pads = append(d.pads, refPad)
	d.refClock = hw.ClockSignal{Name: refPad.Name, Freq: cfg.ReferenceClock}

	pllComp := c.pllFactory(c.name + "_pll")

	crgBuilder := crg.MakeBuilder().
		WithPLL(pllComp).
		WithPhases(cfg.Phases)
	for _, h := range c.hooks {
		crgBuilder = crgBuilder.WithAdditionalHooks(h)
	}

	clockGen := crgBuilder.Build(c.name + "_crg")

	domains, ddr, err := clockGen.Resolve(
		d.refClock, cfg.SystemClock, cfg.TimingMode)
	if err != nil {
		return err
	}

	ddrPad, err := p.RequestResource(c.ddrClockPad)
	if err != nil {
		return fmt.Errorf("soc %s: DDR clock output: %w", c.name, err)
	}

	d.pads = append(d.pads, ddrPad)
	d.domains = domains
	d.ddrOutput = DDROutput{Domain: ddr, Pad: ddrPad.Name}
	d.resetNet = pllComp.ResetNet()

	return nil
}

func (c *Composer) wireMemory(cfg Config, p hw.Platform, d *Description) error {
	if cfg.HasIntegratedMainMemory() {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosMemorySkipped,
			Item:   cfg.IntegratedMainRAMSize,
		})

		return nil
	}

	spec, err := sdram.Selector{}.Select(cfg.TimingMode)
	if err != nil {
		return err
	}

	spec.MustBeSatisfiedBy(d.domains)

	module := sdram.Modules[cfg.SDRAMModule]

	timings, err := module.Timings(cfg.SystemClock, cfg.TimingMode)
	if err != nil {
		return err
	}

	pads, err := p.RequestResource(c.memoryPad)
	if err != nil {
		return fmt.Errorf("soc %s: main memory: %w", c.name, err)
	}

	d.pads = append(d.pads, pads)
	d.memory = &MemoryWiring{
		Name:        "sdram",
		Adapter:     spec,
		PHY:         spec.PHYName(),
		Rate:        cfg.TimingMode.Ratio(),
		Module:      module.Name,
		Geometry:    module.Geometry,
		Timings:     timings,
		Freq:        cfg.SystemClock,
		Pads:        pads,
		L2CacheSize: 0,
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosMemoryWired,
		Item:   spec.PHYName(),
		Detail: module.Name + " @ " + cfg.TimingMode.Ratio(),
	})

	return nil
}

func (c *Composer) wireLEDChaser(
	cfg Config,
	p hw.Platform,
	d *Description,
) error {
	if !cfg.WithLEDChaser {
		return nil
	}

	leds, err := p.RequestAllResources(c.ledPrefix)
	if err != nil {
		return fmt.Errorf("soc %s: led chaser: %w", c.name, err)
	}

	d.pads = append(d.pads, leds...)

	chaser := Peripheral{
		Kind:   "LedChaser",
		Name:   "leds",
		Domain: hw.SysDomainName,
		Freq:   cfg.SystemClock,
		Pads:   leds,
	}
	d.peripherals = append(d.peripherals, chaser)

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosPeripheralWired,
		Item:   chaser.Kind,
		Detail: fmt.Sprintf("%d pads", len(leds)),
	})

	return nil
}
