package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/pinchctl/internal/config"
	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/plugin"
	"github.com/ayusman/pinchctl/pkg/logger"
)

// Plugin actions that set a channel level. Params are {"level": percent}.
const (
	ActionVolumeSet     = "volume-set"
	ActionBrightnessSet = "brightness-set"
)

// ErrUnknownBackend is returned by Select for a backend no candidate provides.
var ErrUnknownBackend = errors.New("unknown backend")

// SetAction returns the plugin action that sets ch.
func SetAction(ch control.Channel) string {
	if ch == control.Brightness {
		return ActionBrightnessSet
	}
	return ActionVolumeSet
}

// PluginSetter forwards Set to an external plugin.
type PluginSetter struct {
	Executor *plugin.Executor
	Plugin   *plugin.Plugin
	Action   string
}

// Set implements control.Setter.
func (s PluginSetter) Set(ctx context.Context, percent int) error {
	return s.Executor.Call(ctx, s.Plugin, s.Action, map[string]int{"level": percent})
}

func pluginCandidate(env Env, ch control.Channel) control.Candidate {
	action := SetAction(ch)
	return control.Candidate{
		Name: config.BackendPlugin,
		TryInit: func(_ context.Context) (control.Setter, error) {
			if env.Plugins == nil {
				return nil, errors.New("no plugin manager")
			}
			p, err := env.Plugins.FindAction(action)
			if err != nil {
				return nil, err
			}
			exec := env.Executor
			if exec == nil {
				exec = plugin.NewExecutor(0)
			}
			return PluginSetter{Executor: exec, Plugin: p, Action: action}, nil
		},
	}
}

// LogSetter only logs. It is the last resort so the loop keeps running on
// machines without a usable backend.
type LogSetter struct {
	Channel control.Channel
	Log     logger.Logger
}

// Set implements control.Setter.
func (s LogSetter) Set(ctx context.Context, percent int) error {
	s.Log.Info(ctx, "level set",
		logger.String("channel", s.Channel.String()),
		logger.Int("percent", percent),
	)
	return nil
}

func logCandidate(env Env, ch control.Channel) control.Candidate {
	return control.Candidate{
		Name: config.BackendLog,
		TryInit: func(_ context.Context) (control.Setter, error) {
			return LogSetter{Channel: ch, Log: env.Log}, nil
		},
	}
}

// Candidates returns the preference chain for ch.
func Candidates(env Env, ch control.Channel) []control.Candidate {
	if ch == control.Brightness {
		return BrightnessCandidates(env)
	}
	return VolumeCandidates(env)
}

// Select resolves the setter for ch. Backend "auto" walks the whole chain;
// any other name tries only that backend.
func Select(ctx context.Context, env Env, ch control.Channel, backend string) (control.Setter, string, error) {
	env = env.Defaults()
	candidates := Candidates(env, ch)

	if backend != "" && backend != config.BackendAuto {
		var picked []control.Candidate
		for _, c := range candidates {
			if c.Name == backend {
				picked = append(picked, c)
			}
		}
		if len(picked) == 0 {
			return nil, "", fmt.Errorf("%w %q for %s", ErrUnknownBackend, backend, ch)
		}
		candidates = picked
	}

	setter, name, err := control.SelectSetter(ctx, candidates...)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", ch, err)
	}
	env.Log.Info(ctx, "setter selected",
		logger.String("channel", ch.String()),
		logger.String("backend", name),
	)
	return setter, name, nil
}
