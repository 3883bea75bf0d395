// Package system binds the control channels to platform volume and brightness backends.
package system

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/ayusman/pinchctl/internal/plugin"
	"github.com/ayusman/pinchctl/pkg/logger"
)

// DefaultBacklightRoot is where Linux exposes backlight devices.
const DefaultBacklightRoot = "/sys/class/backlight"

// Runner runs a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Env is everything the backends need from the host. Zero fields take the
// real host values in Defaults.
type Env struct {
	GOOS          string
	Run           Runner
	LookPath      func(file string) (string, error)
	BacklightRoot string
	Plugins       *plugin.Manager
	Executor      *plugin.Executor
	Log           logger.Logger
}

// Defaults fills unset fields with the host implementations.
func (e Env) Defaults() Env {
	if e.GOOS == "" {
		e.GOOS = runtime.GOOS
	}
	if e.Run == nil {
		e.Run = ExecRunner
	}
	if e.LookPath == nil {
		e.LookPath = exec.LookPath
	}
	if e.BacklightRoot == "" {
		e.BacklightRoot = DefaultBacklightRoot
	}
	if e.Log == nil {
		e.Log = logger.Nop()
	}
	return e
}

// commandSetter runs argv(percent) for each Set.
type commandSetter struct {
	run  Runner
	argv func(percent int) []string
}

func (s commandSetter) Set(ctx context.Context, percent int) error {
	args := s.argv(percent)
	_, err := s.run(ctx, args[0], args[1:]...)
	return err
}

func (e Env) requireOS(goos string) error {
	if e.GOOS != goos {
		return fmt.Errorf("requires %s, running on %s", goos, e.GOOS)
	}
	return nil
}

func (e Env) requireTool(name string) error {
	if _, err := e.LookPath(name); err != nil {
		return fmt.Errorf("%s not installed: %w", name, err)
	}
	return nil
}
