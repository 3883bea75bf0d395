package app

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/ayusman/pinchctl/internal/capture"
	"github.com/ayusman/pinchctl/internal/config"
	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/detector"
	"github.com/ayusman/pinchctl/internal/display"
	"github.com/ayusman/pinchctl/internal/gesture"
	"github.com/ayusman/pinchctl/internal/plugin"
	"github.com/ayusman/pinchctl/internal/screenshot"
	"github.com/ayusman/pinchctl/internal/store"
	"github.com/ayusman/pinchctl/internal/system"
	"github.com/ayusman/pinchctl/pkg/logger"
)

// WindowTitle is the title of the preview window.
const WindowTitle = "pinchctl"

// Build wires the production collaborators described by cfg. A missing hand
// tracking provider or an unusable explicit setter backend is an error;
// history and screenshots degrade to disabled with a warning.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}

	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinDetectionConfidence,
		MinTrackingConf: cfg.MinTrackingConfidence,
		ScriptPath:      cfg.DetectorScript,
		PythonPath:      cfg.PythonPath,
	}, log.Named("detector"))
	if err != nil {
		return nil, fmt.Errorf("hand tracking provider: %w", err)
	}

	setters, backends, err := SelectSetters(ctx, cfg, log)
	if err != nil {
		det.Close()
		return nil, err
	}

	interp, err := gesture.NewInterpreter(gesture.WithDistanceRange(cfg.DistanceMin, cfg.DistanceMax))
	if err != nil {
		det.Close()
		return nil, err
	}

	var st *store.Store
	if s, err := store.New(cfg.DatabasePath()); err != nil {
		log.Warn(ctx, "history disabled", logger.String("path", cfg.DatabasePath()), logger.Error(err))
	} else {
		st = s
	}

	capturer, err := NewCapturer(cfg, log)
	if err != nil {
		log.Warn(ctx, "screenshots disabled", logger.Error(err))
		capturer = nil
	}

	var disp display.Display = display.NewHeadless()
	if cfg.Window {
		disp = display.NewWindow(WindowTitle)
	}

	appCfg := Config{
		Camera:         capture.NewCamera(cfg.CameraID, cfg.FrameWidth, cfg.FrameHeight),
		Detector:       det,
		Setters:        setters,
		Backends:       backends,
		Display:        disp,
		Interpreter:    interp,
		Alpha:          cfg.SmoothingAlpha,
		Interval:       cfg.UpdateInterval(),
		Mirror:         cfg.Mirror,
		QuitKey:        cfg.QuitKey[0],
		Capturer:       capturer,
		ScreenshotKeep: cfg.ScreenshotKeep,
		Store:          st,
		CameraID:       cfg.CameraID,
		Clock:          clock.New(),
		Log:            log.Named("app"),
	}
	if cfg.ScreenshotKey != "" {
		appCfg.ScreenshotKey = cfg.ScreenshotKey[0]
	}
	if cfg.MotionThreshold > 0 {
		appCfg.Motion = capture.NewMotionDetector(cfg.MotionThreshold)
		appCfg.Governor = capture.NewRateGovernor(cfg.IdleFPS, cfg.ActiveFPS, cfg.IdleTimeout(), appCfg.Clock)
	}

	a, err := New(appCfg)
	if err != nil {
		det.Close()
		if st != nil {
			st.Close()
		}
		return nil, err
	}
	return a, nil
}

// SelectSetters resolves the volume and brightness setters from cfg,
// discovering plugins in cfg.PluginDir first.
func SelectSetters(ctx context.Context, cfg *config.Config, log logger.Logger) (
	[control.ChannelCount]control.Setter, [control.ChannelCount]string, error,
) {
	var setters [control.ChannelCount]control.Setter
	var backends [control.ChannelCount]string

	plugins := plugin.NewManager(cfg.PluginDir, log.Named("plugin"))
	if err := plugins.Discover(); err != nil {
		log.Warn(ctx, "plugin discovery failed", logger.String("dir", cfg.PluginDir), logger.Error(err))
	}

	env := system.Env{
		Plugins:  plugins,
		Executor: plugin.NewExecutor(cfg.PluginTimeout()),
		Log:      log.Named("setter"),
	}
	for _, ch := range control.Channels() {
		backend := cfg.VolumeBackend
		if ch == control.Brightness {
			backend = cfg.BrightnessBackend
		}
		s, name, err := system.Select(ctx, env, ch, backend)
		if err != nil {
			return setters, backends, err
		}
		setters[ch], backends[ch] = s, name
	}
	return setters, backends, nil
}

// NewCapturer builds the screenshot capturer from cfg.
func NewCapturer(cfg *config.Config, log logger.Logger) (*screenshot.Capturer, error) {
	return screenshot.New(cfg.ScreenshotDir,
		screenshot.WithPrefix(cfg.ScreenshotPrefix),
		screenshot.WithFormat(cfg.ScreenshotFormat),
		screenshot.WithLogger(log.Named("screenshot")),
	)
}
