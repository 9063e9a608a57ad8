package build

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner runs an external tool in a working directory.
type Runner interface {
	Run(dir string, name string, args ...string) error
}

// ExecRunner runs tools as child processes.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates a runner that forwards tool output to the terminal.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts the tool and waits for it to finish.
func (r *ExecRunner) Run(dir string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build: %s: %w", name, err)
	}

	return nil
}
