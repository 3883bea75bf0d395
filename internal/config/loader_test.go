package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/pinchctl/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then the control-loop defaults are used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FrameWidth, convey.ShouldEqual, 1280)
				convey.So(cfg.FrameHeight, convey.ShouldEqual, 720)
				convey.So(cfg.Mirror, convey.ShouldBeTrue)
				convey.So(cfg.MaxHands, convey.ShouldEqual, 2)
				convey.So(cfg.MinDetectionConfidence, convey.ShouldEqual, 0.8)
				convey.So(cfg.MinTrackingConfidence, convey.ShouldEqual, 0.7)
				convey.So(cfg.SmoothingAlpha, convey.ShouldEqual, 0.1)
				convey.So(cfg.DistanceMin, convey.ShouldEqual, 50)
				convey.So(cfg.DistanceMax, convey.ShouldEqual, 220)
				convey.So(cfg.UpdateIntervalMS, convey.ShouldEqual, 200)
				convey.So(cfg.VolumeBackend, convey.ShouldEqual, config.BackendAuto)
				convey.So(cfg.QuitKey, convey.ShouldEqual, "q")
			})
		})

		convey.Convey("When loading with environment variables", func() {
			_ = os.Setenv("PINCHCTL_CAMERA_ID", "2")
			_ = os.Setenv("PINCHCTL_UPDATE_INTERVAL_MS", "350")
			_ = os.Setenv("PINCHCTL_MIRROR", "false")
			_ = os.Setenv("PINCHCTL_VOLUME_BACKEND", "log")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then env overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CameraID, convey.ShouldEqual, 2)
				convey.So(cfg.UpdateIntervalMS, convey.ShouldEqual, 350)
				convey.So(cfg.Mirror, convey.ShouldBeFalse)
				convey.So(cfg.VolumeBackend, convey.ShouldEqual, "log")
			})
		})

		convey.Convey("When loading from a YAML file", func() {
			path := writeConfig(t, `
camera_id: 1
frame_width: 640
frame_height: 480
smoothing_alpha: 0.25
brightness_backend: sysfs
screenshot_prefix: shot
`)

			cfg, err := config.Load(ctx, path)

			convey.Convey("Then file values are applied and others keep defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CameraID, convey.ShouldEqual, 1)
				convey.So(cfg.FrameWidth, convey.ShouldEqual, 640)
				convey.So(cfg.SmoothingAlpha, convey.ShouldEqual, 0.25)
				convey.So(cfg.BrightnessBackend, convey.ShouldEqual, "sysfs")
				convey.So(cfg.ScreenshotPrefix, convey.ShouldEqual, "shot")
				convey.So(cfg.DistanceMax, convey.ShouldEqual, 220)
			})
		})

		convey.Convey("When both file and env are present", func() {
			path := writeConfig(t, "camera_id: 1\n")
			_ = os.Setenv("PINCHCTL_CONFIG", path)
			_ = os.Setenv("PINCHCTL_CAMERA_ID", "3")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CameraID, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("PINCHCTL_MAX_HANDS", "5")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx, "")

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given default config", t, func() {
		convey.So(config.New().Validate(), convey.ShouldBeNil)

		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"empty distance range", func(c *config.Config) { c.DistanceMax = c.DistanceMin }},
			{"zero alpha", func(c *config.Config) { c.SmoothingAlpha = 0 }},
			{"confidence above one", func(c *config.Config) { c.MinDetectionConfidence = 1.5 }},
			{"unknown backend", func(c *config.Config) { c.BrightnessBackend = "ddc" }},
			{"multi-char quit key", func(c *config.Config) { c.QuitKey = "qq" }},
			{"prefix with separator", func(c *config.Config) { c.ScreenshotPrefix = "a/b" }},
			{"negative interval", func(c *config.Config) { c.UpdateIntervalMS = -1 }},
			{"non-positive frame size", func(c *config.Config) { c.FrameWidth = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				c := config.New()
				tc.mutate(c)
				convey.So(errors.Is(c.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pinchctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, config.EnvPrefix) {
			_ = os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}
