// Package config defines the pinchctl configuration and its loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backend names accepted by VolumeBackend and BrightnessBackend.
const (
	BackendAuto          = "auto"
	BackendPlugin        = "plugin"
	BackendPactl         = "pactl"
	BackendAmixer        = "amixer"
	BackendOsascript     = "osascript"
	BackendSysfs         = "sysfs"
	BackendBrightnessctl = "brightnessctl"
	BackendMacBrightness = "brightness"
	BackendLog           = "log"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Camera.
	CameraID    int  `koanf:"camera_id"`
	FrameWidth  int  `koanf:"frame_width"`
	FrameHeight int  `koanf:"frame_height"`
	Mirror      bool `koanf:"mirror"`

	// Hand tracking provider.
	MaxHands               int     `koanf:"max_hands"`
	MinDetectionConfidence float64 `koanf:"min_detection_confidence"`
	MinTrackingConfidence  float64 `koanf:"min_tracking_confidence"`
	DetectorScript         string  `koanf:"detector_script"`
	PythonPath             string  `koanf:"python_path"`

	// Signal pipeline.
	SmoothingAlpha   float64 `koanf:"smoothing_alpha"`
	DistanceMin      float64 `koanf:"distance_min"`
	DistanceMax      float64 `koanf:"distance_max"`
	UpdateIntervalMS int     `koanf:"update_interval_ms"`

	// Actuator backends.
	VolumeBackend     string `koanf:"volume_backend"`
	BrightnessBackend string `koanf:"brightness_backend"`
	PluginDir         string `koanf:"plugin_dir"`
	PluginTimeoutMS   int    `koanf:"plugin_timeout_ms"`

	// Storage and screenshots.
	DataDir          string `koanf:"data_dir"`
	ScreenshotDir    string `koanf:"screenshot_dir"`
	ScreenshotPrefix string `koanf:"screenshot_prefix"`
	ScreenshotFormat string `koanf:"screenshot_format"`
	ScreenshotKeep   int    `koanf:"screenshot_keep"`

	// Surfaces.
	HTTPAddr      string `koanf:"http_addr"`
	Window        bool   `koanf:"window"`
	Tray          bool   `koanf:"tray"`
	QuitKey       string `koanf:"quit_key"`
	ScreenshotKey string `koanf:"screenshot_key"`

	// Motion-adaptive frame rate; MotionThreshold <= 0 disables it.
	MotionThreshold float64 `koanf:"motion_threshold"`
	IdleFPS         int     `koanf:"idle_fps"`
	ActiveFPS       int     `koanf:"active_fps"`
	IdleTimeoutMS   int     `koanf:"idle_timeout_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	dataDir := ".pinchctl"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".pinchctl")
	}

	return &Config{
		LogLevel:               "info",
		CameraID:               0,
		FrameWidth:             1280,
		FrameHeight:            720,
		Mirror:                 true,
		MaxHands:               2,
		MinDetectionConfidence: 0.8,
		MinTrackingConfidence:  0.7,
		SmoothingAlpha:         0.1,
		DistanceMin:            50,
		DistanceMax:            220,
		UpdateIntervalMS:       200,
		VolumeBackend:          BackendAuto,
		BrightnessBackend:      BackendAuto,
		PluginDir:              filepath.Join(dataDir, "plugins"),
		PluginTimeoutMS:        2000,
		DataDir:                dataDir,
		ScreenshotDir:          filepath.Join(dataDir, "screenshots"),
		ScreenshotPrefix:       "screenshot",
		ScreenshotFormat:       "png",
		ScreenshotKeep:         50,
		HTTPAddr:               "127.0.0.1:8090",
		Window:                 true,
		Tray:                   false,
		QuitKey:                "q",
		ScreenshotKey:          "s",
		MotionThreshold:        0,
		IdleFPS:                10,
		ActiveFPS:              30,
		IdleTimeoutMS:          2000,
	}
}

// UpdateInterval returns the actuator minimum update interval.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMS) * time.Millisecond
}

// PluginTimeout returns the plugin execution timeout.
func (c *Config) PluginTimeout() time.Duration {
	return time.Duration(c.PluginTimeoutMS) * time.Millisecond
}

// IdleTimeout returns how long without motion before dropping to IdleFPS.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMS) * time.Millisecond
}

// DatabasePath returns the sqlite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "pinchctl.db")
}

var knownBackends = map[string]bool{
	BackendAuto: true, BackendPlugin: true, BackendPactl: true, BackendAmixer: true,
	BackendOsascript: true, BackendSysfs: true, BackendBrightnessctl: true,
	BackendMacBrightness: true, BackendLog: true,
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.FrameWidth <= 0 || c.FrameHeight <= 0:
		return fmt.Errorf("%w: frame size must be positive, got %dx%d", ErrInvalidConfig, c.FrameWidth, c.FrameHeight)
	case c.MaxHands < 1 || c.MaxHands > 2:
		return fmt.Errorf("%w: max_hands must be 1 or 2, got %d", ErrInvalidConfig, c.MaxHands)
	case c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1:
		return fmt.Errorf("%w: min_detection_confidence out of [0,1]: %v", ErrInvalidConfig, c.MinDetectionConfidence)
	case c.MinTrackingConfidence < 0 || c.MinTrackingConfidence > 1:
		return fmt.Errorf("%w: min_tracking_confidence out of [0,1]: %v", ErrInvalidConfig, c.MinTrackingConfidence)
	case c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1:
		return fmt.Errorf("%w: smoothing_alpha must be in (0,1], got %v", ErrInvalidConfig, c.SmoothingAlpha)
	case c.DistanceMin < 0 || c.DistanceMax <= c.DistanceMin:
		return fmt.Errorf("%w: distance range [%v,%v] is empty", ErrInvalidConfig, c.DistanceMin, c.DistanceMax)
	case c.UpdateIntervalMS <= 0:
		return fmt.Errorf("%w: update_interval_ms must be positive, got %d", ErrInvalidConfig, c.UpdateIntervalMS)
	case !knownBackends[c.VolumeBackend]:
		return fmt.Errorf("%w: unknown volume_backend %q", ErrInvalidConfig, c.VolumeBackend)
	case !knownBackends[c.BrightnessBackend]:
		return fmt.Errorf("%w: unknown brightness_backend %q", ErrInvalidConfig, c.BrightnessBackend)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case len(c.QuitKey) != 1:
		return fmt.Errorf("%w: quit_key must be a single character", ErrInvalidConfig)
	case c.ScreenshotKey != "" && len(c.ScreenshotKey) != 1:
		return fmt.Errorf("%w: screenshot_key must be a single character", ErrInvalidConfig)
	case strings.ContainsAny(c.ScreenshotPrefix, `/\`):
		return fmt.Errorf("%w: screenshot_prefix must not contain path separators", ErrInvalidConfig)
	}
	return nil
}
