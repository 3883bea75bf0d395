// Package app runs the frame control loop: camera, hand detection, pinch
// interpretation, smoothing and rate-limited actuation.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-multierror"

	"github.com/ayusman/pinchctl/internal/capture"
	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/detector"
	"github.com/ayusman/pinchctl/internal/display"
	"github.com/ayusman/pinchctl/internal/gesture"
	"github.com/ayusman/pinchctl/internal/screenshot"
	"github.com/ayusman/pinchctl/internal/store"
	"github.com/ayusman/pinchctl/pkg/logger"
)

var (
	// ErrMissingComponent is returned by New when a required collaborator is nil.
	ErrMissingComponent = errors.New("missing component")
	// ErrAlreadyRunning is returned when Run is called twice concurrently.
	ErrAlreadyRunning = errors.New("control loop already running")
	// ErrNotRunning is returned to commands still queued when the loop exits.
	ErrNotRunning = errors.New("control loop not running")
	// ErrScreenshotsDisabled is returned when no Capturer is configured.
	ErrScreenshotsDisabled = errors.New("screenshots disabled")
)

// Config holds the collaborators of the control loop.
// Camera, Detector and both Setters are required.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Setters  [control.ChannelCount]control.Setter
	// Backends names the selected setter per channel, for status and history.
	Backends [control.ChannelCount]string

	Display     display.Display
	Interpreter *gesture.Interpreter
	// Alpha is the filter weight of a new reading; 0 means control.DefaultAlpha.
	Alpha float64
	// Interval is the actuator minimum update interval; 0 means control.DefaultInterval.
	Interval time.Duration
	Mirror   bool

	QuitKey       byte
	ScreenshotKey byte

	Capturer       *screenshot.Capturer
	ScreenshotKeep int
	Store          *store.Store
	CameraID       int

	// Motion and Governor enable the motion-adaptive frame rate when both are set.
	Motion   *capture.MotionDetector
	Governor *capture.RateGovernor

	Clock clock.Clock
	Log   logger.Logger
}

// App is the frame control loop.
type App struct {
	config      Config
	camera      capture.Camera
	detector    detector.Detector
	display     display.Display
	interpreter *gesture.Interpreter
	filter      control.Filter
	actuators   [control.ChannelCount]*control.Actuator
	clock       clock.Clock
	log         logger.Logger

	// Owned by the loop goroutine.
	state   control.State
	frames  int64
	dropped int64
	history *store.Recorder

	cmds     chan command
	frameHub *FrameHub

	mu     sync.RWMutex
	status Status
}

// New validates cfg and creates an App. Nothing is opened until Run.
func New(cfg Config) (*App, error) {
	switch {
	case cfg.Camera == nil:
		return nil, fmt.Errorf("%w: camera", ErrMissingComponent)
	case cfg.Detector == nil:
		return nil, fmt.Errorf("%w: hand detector", ErrMissingComponent)
	}
	for _, ch := range control.Channels() {
		if cfg.Setters[ch] == nil {
			return nil, fmt.Errorf("%w: %s setter", ErrMissingComponent, ch)
		}
	}

	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Display == nil {
		cfg.Display = display.NewHeadless()
	}
	if cfg.QuitKey == 0 {
		cfg.QuitKey = 'q'
	}
	if cfg.Interval == 0 {
		cfg.Interval = control.DefaultInterval
	}
	if cfg.Interpreter == nil {
		interp, err := gesture.NewInterpreter()
		if err != nil {
			return nil, err
		}
		cfg.Interpreter = interp
	}

	filter := control.DefaultFilter()
	if cfg.Alpha != 0 {
		f, err := control.NewFilter(cfg.Alpha)
		if err != nil {
			return nil, err
		}
		filter = f
	}

	a := &App{
		config:      cfg,
		camera:      cfg.Camera,
		detector:    cfg.Detector,
		display:     cfg.Display,
		interpreter: cfg.Interpreter,
		filter:      filter,
		clock:       cfg.Clock,
		log:         cfg.Log,
		state:       control.NewState(control.InitialValue),
		cmds:        make(chan command, 8),
		frameHub:    NewFrameHub(),
	}
	for _, ch := range control.Channels() {
		a.actuators[ch] = control.NewActuator(ch, cfg.Setters[ch],
			control.WithInterval(cfg.Interval),
			control.WithClock(cfg.Clock),
			control.WithLogger(cfg.Log.Named("actuator")),
			control.WithRecorder(a),
		)
	}
	a.publishStatus(0, 0)

	return a, nil
}

// Frames returns the hub publishing annotated JPEG frames.
func (a *App) Frames() *FrameHub {
	return a.frameHub
}

// Store returns the history store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Capturer returns the screenshot capturer, which may be nil.
func (a *App) Capturer() *screenshot.Capturer {
	return a.config.Capturer
}

// Close releases the detector, display, motion detector and store.
// The camera is released by Run.
func (a *App) Close() error {
	var errs *multierror.Error
	if err := a.detector.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("close detector: %w", err))
	}
	if err := a.display.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("close display: %w", err))
	}
	if a.config.Motion != nil {
		a.config.Motion.Close()
	}
	if a.config.Store != nil {
		if err := a.config.Store.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errs.ErrorOrNil()
}
