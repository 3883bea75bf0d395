package app

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"gocv.io/x/gocv"

	"github.com/ayusman/pinchctl/internal/capture"
	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/display"
	"github.com/ayusman/pinchctl/internal/gesture"
	"github.com/ayusman/pinchctl/internal/store"
	"github.com/ayusman/pinchctl/pkg/logger"
	"github.com/ayusman/pinchctl/pkg/metrics"
)

// Run opens the camera and processes frames until ctx is cancelled or the quit
// key is pressed. The camera is closed on every exit path.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.status.Running {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	a.status.Running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.status.Running = false
		a.mu.Unlock()
		a.failPending()
	}()

	if err := a.camera.Open(); err != nil {
		return err
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			a.log.Warn(ctx, "error closing camera", logger.Error(err))
		}
	}()

	a.startSession(ctx)
	defer a.finishSession(ctx)

	var pace *pacer
	if a.config.Governor != nil && a.config.Motion != nil {
		fps := a.config.Governor.FPS()
		a.camera.SetFPS(fps)
		pace = newPacer(a.clock, fps)
		defer pace.stop()
	}

	a.log.Info(ctx, "control loop started",
		logger.Bool("mirror", a.config.Mirror),
		logger.Duration("interval", a.config.Interval),
	)
	for {
		select {
		case <-ctx.Done():
			a.log.Info(ctx, "control loop stopped", logger.Int("frames", int(a.frames)))
			return nil
		default:
		}

		quit, fps := a.Step(ctx)
		if quit {
			a.log.Info(ctx, "quit key pressed", logger.Int("frames", int(a.frames)))
			return nil
		}

		if pace != nil {
			if fps > 0 {
				pace.reset(fps)
			}
			if !pace.wait(ctx) {
				return nil
			}
		}
	}
}

// Step runs one iteration. It reports whether the quit key was pressed and,
// when the motion governor changed rate, the new frame rate (otherwise 0).
func (a *App) Step(ctx context.Context) (quit bool, newFPS int) {
	start := a.clock.Now()

	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.dropped++
		metrics.RecordFrameDropped()
		a.log.Debug(ctx, "frame read failed", logger.Error(err))
		a.drainCommands(ctx, nil)
		a.publishStatus(0, a.currentFPS())
		return false, 0
	}
	defer frame.Close()

	if a.config.Mirror {
		capture.Mirror(frame)
	}

	if a.config.Governor != nil && a.config.Motion != nil {
		motion, _ := a.config.Motion.Detect(frame)
		if fps, changed := a.config.Governor.Observe(motion); changed {
			a.camera.SetFPS(fps)
			newFPS = fps
			a.log.Debug(ctx, "frame rate changed", logger.Int("fps", fps))
		}
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		metrics.RecordDetectError()
		a.log.Warn(ctx, "hand detection failed", logger.Error(err))
		hands = nil
	}
	metrics.RecordHandsDetected(len(hands))

	readings := a.interpreter.InterpretAll(hands, frame.Cols(), frame.Rows(), a.config.Mirror)

	paused := a.Paused()
	if !paused {
		a.state = ProcessHands(ctx, a.state, readings, a.filter, a.actuators)
	}
	a.frames++

	display.Draw(frame, display.Overlay{
		Readings: readings,
		Levels:   a.levels(),
		Paused:   paused,
		QuitKey:  string(a.config.QuitKey),
	})

	a.drainCommands(ctx, frame)
	a.publishFrame(ctx, frame)

	if err := a.display.Show(frame); err != nil {
		a.log.Warn(ctx, "display failed", logger.Error(err))
	}

	a.publishStatus(len(hands), a.currentFPS())
	metrics.RecordFrameProcessed(float64(a.clock.Since(start).Microseconds()) / 1000)

	switch key := a.display.PollKey(); {
	case key == int(a.config.QuitKey):
		return true, newFPS
	case a.config.ScreenshotKey != 0 && key == int(a.config.ScreenshotKey):
		if _, err := a.takeScreenshot(ctx, frame, store.TriggerKey); err != nil {
			a.log.Warn(ctx, "screenshot failed", logger.Error(err))
		}
	}
	return false, newFPS
}

// ProcessHands smooths and applies each reading in observation order. When
// several readings target one channel the last one wins.
func ProcessHands(
	ctx context.Context,
	st control.State,
	readings []gesture.Reading,
	filter control.Filter,
	actuators [control.ChannelCount]*control.Actuator,
) control.State {
	for _, r := range readings {
		if !r.Channel.Valid() || actuators[r.Channel] == nil {
			continue
		}
		var smoothed float64
		st, smoothed = filter.Update(st, r.Channel, r.Raw)
		metrics.RecordReading(r.Channel.String(), smoothed)

		cs, _ := actuators[r.Channel].Apply(ctx, st.Get(r.Channel), smoothed)
		st = st.With(r.Channel, cs)
	}
	return st
}

// State returns a copy of the channel state. Only safe when Run is not active.
func (a *App) State() control.State {
	return a.state
}

func (a *App) levels() [control.ChannelCount]float64 {
	var out [control.ChannelCount]float64
	for _, ch := range control.Channels() {
		out[ch] = a.state.Get(ch).Value
	}
	return out
}

func (a *App) currentFPS() int {
	if a.config.Governor != nil {
		return a.config.Governor.FPS()
	}
	return a.camera.FPS()
}

func (a *App) publishFrame(ctx context.Context, frame *gocv.Mat) {
	if !a.frameHub.Active() {
		return
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		a.log.Debug(ctx, "frame encode failed", logger.Error(err))
		return
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	a.frameHub.Publish(data)
}

func (a *App) startSession(ctx context.Context) {
	a.frames, a.dropped = 0, 0
	if a.config.Store == nil {
		return
	}

	sess := &store.Session{
		CameraID:          a.config.CameraID,
		VolumeBackend:     a.config.Backends[control.Volume],
		BrightnessBackend: a.config.Backends[control.Brightness],
		StartedAt:         a.clock.Now(),
	}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		a.log.Warn(ctx, "failed to create session", logger.Error(err))
		return
	}
	a.history = store.NewRecorder(a.config.Store.Adjustments(), sess.ID, a.log.Named("history"))

	a.mu.Lock()
	a.status.SessionID = sess.ID
	a.mu.Unlock()
}

func (a *App) finishSession(ctx context.Context) {
	a.mu.Lock()
	id := a.status.SessionID
	a.mu.Unlock()
	if a.config.Store == nil || id == "" {
		return
	}
	if err := a.config.Store.Sessions().Finish(id, a.frames, a.clock.Now()); err != nil {
		a.log.Warn(ctx, "failed to finish session", logger.Error(err))
	}
	a.history = nil
}

// pacer spaces iterations at a frame rate when the motion governor is on.
type pacer struct {
	ticker *clock.Ticker
	fps    int
}

func newPacer(clk clock.Clock, fps int) *pacer {
	return &pacer{ticker: clk.Ticker(frameInterval(fps)), fps: fps}
}

func (p *pacer) reset(fps int) {
	if fps == p.fps {
		return
	}
	p.fps = fps
	p.ticker.Reset(frameInterval(fps))
}

// wait blocks until the next tick and reports false when ctx ended first.
func (p *pacer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.ticker.C:
		return true
	}
}

func (p *pacer) stop() {
	p.ticker.Stop()
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	return time.Second / time.Duration(fps)
}
