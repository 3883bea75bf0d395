// Package gesture turns tracked hands into per-channel pinch readings.
package gesture

import (
	"fmt"
	"image"
	"math"

	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/detector"
)

// Default pinch distance domain in pixels.
const (
	DefaultMinDistance = 50.0
	DefaultMaxDistance = 220.0
)

// Reading is one hand's contribution to a frame.
type Reading struct {
	Channel control.Channel
	// Raw is the instantaneous percent in [0,100].
	Raw float64
	// Distance is the thumb-to-index distance in pixels.
	Distance float64
	Thumb    image.Point
	Index    image.Point
	// Label is the provider's handedness label.
	Label string
}

// Interpreter maps pinch distance onto a percent.
type Interpreter struct {
	minDistance float64
	maxDistance float64
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithDistanceRange sets the pixel distances mapped to 0 and 100.
func WithDistanceRange(minDist, maxDist float64) Option {
	return func(i *Interpreter) {
		i.minDistance = minDist
		i.maxDistance = maxDist
	}
}

// NewInterpreter creates an interpreter. The distance range must be non-empty.
func NewInterpreter(opts ...Option) (*Interpreter, error) {
	i := &Interpreter{
		minDistance: DefaultMinDistance,
		maxDistance: DefaultMaxDistance,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.minDistance < 0 || i.maxDistance <= i.minDistance {
		return nil, fmt.Errorf("invalid distance range [%v,%v]", i.minDistance, i.maxDistance)
	}
	return i, nil
}

// Interpret reads one hand on a width x height frame. It returns false when the
// hand lacks the thumb or index tip, or its label names no known side.
func (i *Interpreter) Interpret(hand *detector.Hand, width, height int, mirrored bool) (Reading, bool) {
	thumb, ok := hand.Landmark(detector.ThumbTip)
	if !ok {
		return Reading{}, false
	}
	index, ok := hand.Landmark(detector.IndexTip)
	if !ok {
		return Reading{}, false
	}

	ch, ok := ResolveChannel(hand.Handedness, mirrored)
	if !ok {
		return Reading{}, false
	}

	tp := ToPixel(thumb, width, height)
	ip := ToPixel(index, width, height)
	d := PinchDistance(tp, ip)

	return Reading{
		Channel:  ch,
		Raw:      MapRange(d, i.minDistance, i.maxDistance, 0, 100),
		Distance: d,
		Thumb:    tp,
		Index:    ip,
		Label:    hand.Handedness,
	}, true
}

// InterpretAll interprets hands in observation order, skipping unusable ones.
// Two hands resolving to the same channel both appear; the later one wins downstream.
func (i *Interpreter) InterpretAll(hands []detector.Hand, width, height int, mirrored bool) []Reading {
	readings := make([]Reading, 0, len(hands))
	for k := range hands {
		if r, ok := i.Interpret(&hands[k], width, height, mirrored); ok {
			readings = append(readings, r)
		}
	}
	return readings
}

// ResolveChannel maps a provider label to a channel. The anatomical left hand
// drives volume and the right hand drives brightness. On a mirrored frame the
// provider sees each hand on the opposite side, so "Right" means the left hand.
func ResolveChannel(label string, mirrored bool) (control.Channel, bool) {
	var leftHand bool
	switch label {
	case detector.LabelLeft:
		leftHand = !mirrored
	case detector.LabelRight:
		leftHand = mirrored
	default:
		return 0, false
	}
	if leftHand {
		return control.Volume, true
	}
	return control.Brightness, true
}

// ToPixel converts a normalized point to rounded pixel coordinates.
func ToPixel(p detector.Point, width, height int) image.Point {
	return image.Point{
		X: int(math.Round(p.X * float64(width))),
		Y: int(math.Round(p.Y * float64(height))),
	}
}

// PinchDistance is the Euclidean distance between two pixel points.
func PinchDistance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// MapRange maps v linearly from [inMin,inMax] to [outMin,outMax], clamping
// outside the input domain.
func MapRange(v, inMin, inMax, outMin, outMax float64) float64 {
	switch {
	case v <= inMin:
		return outMin
	case v >= inMax:
		return outMax
	}
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}
