package control

import (
	"context"
	"fmt"
)

// LevelFunc writes a value on a backend's native scale.
type LevelFunc func(ctx context.Context, level float64) error

// ScaledSetter maps a percent linearly onto [Min,Max] before calling Level.
// It covers backends such as a sysfs backlight (0..max_brightness) or a 0..1 scalar.
type ScaledSetter struct {
	Min   float64
	Max   float64
	Level LevelFunc
}

// Set implements Setter.
func (s ScaledSetter) Set(ctx context.Context, percent int) error {
	if s.Level == nil {
		return fmt.Errorf("scaled setter has no level func")
	}
	return s.Level(ctx, s.Scale(percent))
}

// Scale converts percent into the native range.
func (s ScaledSetter) Scale(percent int) float64 {
	p := float64(ClampPercent(float64(percent)))
	return s.Min + (s.Max-s.Min)*p/100
}
