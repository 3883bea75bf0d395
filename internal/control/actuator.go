package control

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ayusman/pinchctl/pkg/logger"
	"github.com/ayusman/pinchctl/pkg/metrics"
)

// DefaultInterval is the minimum time between two setter calls.
const DefaultInterval = 200 * time.Millisecond

// Setter pushes an integer percent in [0,100] to the system.
type Setter interface {
	Set(ctx context.Context, percent int) error
}

// SetterFunc adapts a function to Setter.
type SetterFunc func(ctx context.Context, percent int) error

// Set calls f.
func (f SetterFunc) Set(ctx context.Context, percent int) error {
	return f(ctx, percent)
}

// Recorder observes every setter invocation, successful or not.
// Throttled applies never reach it.
type Recorder interface {
	RecordApply(ctx context.Context, ch Channel, percent int, err error, at time.Time)
}

// Actuator rate-limits calls to a Setter for one channel.
// It is stateless between calls: the last-applied time travels in ChannelState.
type Actuator struct {
	channel  Channel
	setter   Setter
	interval time.Duration
	clock    clock.Clock
	log      logger.Logger
	recorder Recorder
}

// ActuatorOption configures an Actuator.
type ActuatorOption func(*Actuator)

// WithInterval sets the minimum update interval.
func WithInterval(d time.Duration) ActuatorOption {
	return func(a *Actuator) {
		if d >= 0 {
			a.interval = d
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.Clock) ActuatorOption {
	return func(a *Actuator) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithLogger sets the logger used for setter failures.
func WithLogger(l logger.Logger) ActuatorOption {
	return func(a *Actuator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) ActuatorOption {
	return func(a *Actuator) {
		a.recorder = r
	}
}

// NewActuator creates an actuator for ch driving setter.
func NewActuator(ch Channel, setter Setter, opts ...ActuatorOption) *Actuator {
	a := &Actuator{
		channel:  ch,
		setter:   setter,
		interval: DefaultInterval,
		clock:    clock.New(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Channel returns the channel this actuator drives.
func (a *Actuator) Channel() Channel {
	return a.channel
}

// Interval returns the minimum update interval.
func (a *Actuator) Interval() time.Duration {
	return a.interval
}

// Apply clamps percent and calls the setter unless the previous successful call
// was less than the interval ago. It returns the updated state and the clamped
// percent, which callers display whether or not the setter ran.
//
// A setter error is logged and leaves LastAppliedAt untouched so the next frame
// retries.
func (a *Actuator) Apply(ctx context.Context, st ChannelState, percent float64) (ChannelState, int) {
	p := ClampPercent(percent)
	now := a.clock.Now()

	if !st.LastAppliedAt.IsZero() && now.Sub(st.LastAppliedAt) < a.interval {
		metrics.RecordActuatorCall(a.channel.String(), metrics.ResultThrottled, p)
		return st, p
	}

	err := a.setter.Set(ctx, p)
	if a.recorder != nil {
		a.recorder.RecordApply(ctx, a.channel, p, err, now)
	}
	if err != nil {
		metrics.RecordActuatorCall(a.channel.String(), metrics.ResultError, p)
		a.log.Warn(ctx, "setter failed",
			logger.String("channel", a.channel.String()),
			logger.Int("percent", p),
			logger.Error(err),
		)
		return st, p
	}

	metrics.RecordActuatorCall(a.channel.String(), metrics.ResultOK, p)
	st.LastAppliedAt = now
	return st, p
}

// ClampPercent clamps v to [0,100] and truncates it toward zero. NaN maps to 0.
func ClampPercent(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 100:
		return 100
	}
	return int(v)
}
