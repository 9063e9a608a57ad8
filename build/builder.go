package build

import (
	"github.com/sarchlab/easysoc/hooking"
)

// Builder can build toolchains.
type Builder struct {
	outputDir    string
	toolchainDir string
	runner       Runner
	hooks        []hooking.Hook
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		outputDir: "build",
	}
}

// WithOutputDir sets the directory under which each board gets its own
// build tree.
func (b Builder) WithOutputDir(dir string) Builder {
	b.outputDir = dir
	return b
}

// WithToolchainDir sets the directory that holds the Quartus binaries. An
// empty directory means the binaries are looked up in PATH.
func (b Builder) WithToolchainDir(dir string) Builder {
	b.toolchainDir = dir
	return b
}

// WithRunner sets how external tools are run.
func (b Builder) WithRunner(r Runner) Builder {
	b.runner = r
	return b
}

// WithAdditionalHooks adds a hook to the toolchain.
func (b Builder) WithAdditionalHooks(h hooking.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.outputDir == "" {
		panic("output directory must not be empty")
	}
}

// Build creates a new toolchain.
func (b Builder) Build(name string) *Toolchain {
	b.parametersMustBeValid()

	t := &Toolchain{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		outputDir:    b.outputDir,
		toolchainDir: b.toolchainDir,
		runner:       b.runner,
	}

	if t.runner == nil {
		t.runner = NewExecRunner()
	}

	for _, h := range b.hooks {
		t.AcceptHook(h)
	}

	return t
}
