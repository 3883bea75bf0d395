package system

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ayusman/pinchctl/internal/config"
	"github.com/ayusman/pinchctl/internal/control"
)

// BrightnessCandidates lists the brightness backends in preference order.
func BrightnessCandidates(env Env) []control.Candidate {
	env = env.Defaults()
	return []control.Candidate{
		pluginCandidate(env, control.Brightness),
		{Name: config.BackendSysfs, TryInit: env.initSysfs},
		{Name: config.BackendBrightnessctl, TryInit: env.initBrightnessctl},
		{Name: config.BackendMacBrightness, TryInit: env.initMacBrightness},
		logCandidate(env, control.Brightness),
	}
}

// initSysfs picks the first backlight device, by name, whose brightness file is writable.
func (e Env) initSysfs(_ context.Context) (control.Setter, error) {
	if err := e.requireOS("linux"); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(e.BacklightRoot)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", e.BacklightRoot, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var lastErr error
	for _, name := range names {
		dir := filepath.Join(e.BacklightRoot, name)
		setter, err := sysfsBacklight(dir)
		if err == nil {
			return setter, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no backlight devices in %s", e.BacklightRoot)
	}
	return nil, lastErr
}

func sysfsBacklight(dir string) (control.Setter, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return nil, err
	}
	maxLevel, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || maxLevel <= 0 {
		return nil, fmt.Errorf("invalid max_brightness %q in %s", strings.TrimSpace(string(raw)), dir)
	}

	path := filepath.Join(dir, "brightness")
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("backlight not writable: %w", err)
	}
	_ = f.Close()

	return control.ScaledSetter{
		Min: 0,
		Max: float64(maxLevel),
		Level: func(_ context.Context, level float64) error {
			v := strconv.Itoa(int(math.Round(level)))
			return os.WriteFile(path, []byte(v), 0)
		},
	}, nil
}

func (e Env) initBrightnessctl(ctx context.Context) (control.Setter, error) {
	if err := e.requireOS("linux"); err != nil {
		return nil, err
	}
	if err := e.requireTool("brightnessctl"); err != nil {
		return nil, err
	}
	if _, err := e.Run(ctx, "brightnessctl", "-q", "info"); err != nil {
		return nil, err
	}
	return commandSetter{run: e.Run, argv: func(p int) []string {
		return []string{"brightnessctl", "-q", "set", strconv.Itoa(p) + "%"}
	}}, nil
}

// initMacBrightness drives the `brightness` CLI, which takes a 0..1 level.
func (e Env) initMacBrightness(_ context.Context) (control.Setter, error) {
	if err := e.requireOS("darwin"); err != nil {
		return nil, err
	}
	if err := e.requireTool("brightness"); err != nil {
		return nil, err
	}
	return control.ScaledSetter{
		Min: 0,
		Max: 1,
		Level: func(ctx context.Context, level float64) error {
			_, err := e.Run(ctx, "brightness", strconv.FormatFloat(level, 'f', 2, 64))
			return err
		},
	}, nil
}
