package system

import (
	"context"
	"strconv"

	"github.com/ayusman/pinchctl/internal/config"
	"github.com/ayusman/pinchctl/internal/control"
)

// VolumeCandidates lists the volume backends in preference order.
func VolumeCandidates(env Env) []control.Candidate {
	env = env.Defaults()
	return []control.Candidate{
		pluginCandidate(env, control.Volume),
		{Name: config.BackendPactl, TryInit: env.initPactl},
		{Name: config.BackendAmixer, TryInit: env.initAmixer},
		{Name: config.BackendOsascript, TryInit: env.initOsascript},
		logCandidate(env, control.Volume),
	}
}

func (e Env) initPactl(ctx context.Context) (control.Setter, error) {
	if err := e.requireOS("linux"); err != nil {
		return nil, err
	}
	if err := e.requireTool("pactl"); err != nil {
		return nil, err
	}
	// Fails when no PulseAudio/PipeWire server is reachable.
	if _, err := e.Run(ctx, "pactl", "info"); err != nil {
		return nil, err
	}
	return commandSetter{run: e.Run, argv: func(p int) []string {
		return []string{"pactl", "set-sink-volume", "@DEFAULT_SINK@", strconv.Itoa(p) + "%"}
	}}, nil
}

func (e Env) initAmixer(ctx context.Context) (control.Setter, error) {
	if err := e.requireOS("linux"); err != nil {
		return nil, err
	}
	if err := e.requireTool("amixer"); err != nil {
		return nil, err
	}
	if _, err := e.Run(ctx, "amixer", "sget", "Master"); err != nil {
		return nil, err
	}
	return commandSetter{run: e.Run, argv: func(p int) []string {
		return []string{"amixer", "-q", "sset", "Master", strconv.Itoa(p) + "%"}
	}}, nil
}

func (e Env) initOsascript(_ context.Context) (control.Setter, error) {
	if err := e.requireOS("darwin"); err != nil {
		return nil, err
	}
	if err := e.requireTool("osascript"); err != nil {
		return nil, err
	}
	return commandSetter{run: e.Run, argv: func(p int) []string {
		return []string{"osascript", "-e", "set volume output volume " + strconv.Itoa(p)}
	}}, nil
}
