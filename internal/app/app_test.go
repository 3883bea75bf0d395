package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/detector"
	"github.com/ayusman/pinchctl/internal/gesture"
	"github.com/ayusman/pinchctl/internal/screenshot"
)

func TestNew_RequiresComponents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no camera", func(c *Config) { c.Camera = nil }},
		{"no detector", func(c *Config) { c.Detector = nil }},
		{"no volume setter", func(c *Config) { c.Setters[control.Volume] = nil }},
		{"no brightness setter", func(c *Config) { c.Setters[control.Brightness] = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1)
			tt.mutate(&f.cfg)
			if _, err := New(f.cfg); !errors.Is(err, ErrMissingComponent) {
				t.Errorf("expected ErrMissingComponent, got %v", err)
			}
		})
	}
}

func TestNew_InvalidAlpha(t *testing.T) {
	f := newFixture(t, 1)
	f.cfg.Alpha = 1.5
	if _, err := New(f.cfg); err == nil {
		t.Error("expected error for alpha above 1")
	}
}

func TestNew_InitialStatus(t *testing.T) {
	f := newFixture(t, 1)
	a, err := New(f.cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	st := a.Status()
	if st.Running || st.Paused || len(st.Channels) != 2 {
		t.Fatalf("unexpected initial status %+v", st)
	}
	for i, cs := range st.Channels {
		if cs.Value != control.InitialValue || cs.Percent != 50 {
			t.Errorf("channel %d should start at 50, got %+v", i, cs)
		}
	}
	if st.Channels[control.Volume].Backend != "test-volume" {
		t.Errorf("unexpected backend %q", st.Channels[control.Volume].Backend)
	}
}

func TestProcessHands_Scenario(t *testing.T) {
	interp, err := gesture.NewInterpreter()
	if err != nil {
		t.Fatal(err)
	}
	readings := interp.InterpretAll(pinchHands(), 1280, 720, true)
	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}

	volume, brightness := &recordingSetter{}, &recordingSetter{}
	clk := clock.NewMock()
	actuators := [control.ChannelCount]*control.Actuator{
		control.NewActuator(control.Volume, volume, control.WithClock(clk)),
		control.NewActuator(control.Brightness, brightness, control.WithClock(clk)),
	}

	st := ProcessHands(context.Background(), control.NewState(control.InitialValue), readings, control.DefaultFilter(), actuators)

	if got := st.Get(control.Volume).Value; got != 55 {
		t.Errorf("volume = %v, want 55", got)
	}
	if got := st.Get(control.Brightness).Value; got != 45 {
		t.Errorf("brightness = %v, want 45", got)
	}
	if calls := volume.Calls(); len(calls) != 1 || calls[0] != 55 {
		t.Errorf("volume setter calls = %v, want [55]", calls)
	}
	if calls := brightness.Calls(); len(calls) != 1 || calls[0] != 45 {
		t.Errorf("brightness setter calls = %v, want [45]", calls)
	}
	if st.Get(control.Volume).LastAppliedAt.IsZero() {
		t.Error("successful apply should stamp LastAppliedAt")
	}
}

func TestProcessHands_SameChannelLastWins(t *testing.T) {
	readings := []gesture.Reading{
		{Channel: control.Volume, Raw: 100},
		{Channel: control.Volume, Raw: 0},
	}
	setter := &recordingSetter{}
	clk := clock.NewMock()
	actuators := [control.ChannelCount]*control.Actuator{
		control.NewActuator(control.Volume, setter, control.WithClock(clk), control.WithInterval(0)),
		control.NewActuator(control.Brightness, &recordingSetter{}, control.WithClock(clk)),
	}

	st := ProcessHands(context.Background(), control.NewState(control.InitialValue), readings, control.DefaultFilter(), actuators)

	// 50 -> 55 -> 49.5
	if got := st.Get(control.Volume).Value; got < 49.49 || got > 49.51 {
		t.Errorf("volume = %v, want 49.5", got)
	}
	if calls := setter.Calls(); len(calls) != 2 || calls[0] != 55 || calls[1] != 49 {
		t.Errorf("setter calls = %v, want [55 49]", calls)
	}
}

func TestProcessHands_FailureRetriesNextFrame(t *testing.T) {
	setter := &recordingSetter{err: errors.New("device busy")}
	clk := clock.NewMock()
	actuators := [control.ChannelCount]*control.Actuator{
		control.NewActuator(control.Volume, setter, control.WithClock(clk)),
		control.NewActuator(control.Brightness, &recordingSetter{}, control.WithClock(clk)),
	}
	reading := []gesture.Reading{{Channel: control.Volume, Raw: 100}}

	st := control.NewState(control.InitialValue)
	st = ProcessHands(context.Background(), st, reading, control.DefaultFilter(), actuators)
	clk.Add(10 * time.Millisecond)
	st = ProcessHands(context.Background(), st, reading, control.DefaultFilter(), actuators)

	if len(setter.Calls()) != 2 {
		t.Errorf("a failed apply should not throttle the next frame, calls = %v", setter.Calls())
	}
	if !st.Get(control.Volume).LastAppliedAt.IsZero() {
		t.Error("failed applies must not advance LastAppliedAt")
	}
}

func TestStep_NoHandsKeepsState(t *testing.T) {
	f := newFixture(t, 1)
	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cam.Open(); err != nil {
		t.Fatal(err)
	}

	if quit, _ := a.Step(context.Background()); quit {
		t.Fatal("unexpected quit")
	}
	if a.State() != control.NewState(control.InitialValue) {
		t.Errorf("state changed without hands: %+v", a.State())
	}
	if len(f.volume.Calls())+len(f.brightness.Calls()) != 0 {
		t.Error("no setter should run without hands")
	}
	if f.display.shown != 1 {
		t.Errorf("expected frame shown, got %d", f.display.shown)
	}
}

func TestStep_ReadFailureSkipsFrame(t *testing.T) {
	f := newFixture(t, 1)
	f.det.SetHands(pinchHands())
	f.cam.FailOn(1)
	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cam.Open(); err != nil {
		t.Fatal(err)
	}

	a.Step(context.Background())
	if st := a.Status(); st.Dropped != 1 || st.Frames != 0 {
		t.Errorf("expected one dropped frame, got %+v", st)
	}
	if f.det.Calls() != 0 || f.display.shown != 0 {
		t.Error("detector and display should not run on a dropped frame")
	}

	a.Step(context.Background())
	if st := a.Status(); st.Frames != 1 {
		t.Errorf("next frame should be processed, got %+v", st)
	}
}

func TestStep_DetectorErrorMeansNoHands(t *testing.T) {
	f := newFixture(t, 1)
	f.det.SetError(errors.New("provider crashed"))
	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cam.Open(); err != nil {
		t.Fatal(err)
	}

	a.Step(context.Background())
	if st := a.Status(); st.Frames != 1 || st.Hands != 0 {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestStep_Paused(t *testing.T) {
	f := newFixture(t, 1)
	f.det.SetHands(pinchHands())
	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cam.Open(); err != nil {
		t.Fatal(err)
	}

	a.SetPaused(true)
	if !a.Paused() {
		t.Fatal("expected paused")
	}
	a.Step(context.Background())
	if len(f.volume.Calls()) != 0 || a.State() != control.NewState(control.InitialValue) {
		t.Error("paused loop must not filter or actuate")
	}
	if f.display.shown != 1 {
		t.Error("paused loop still shows frames")
	}

	if a.TogglePause() {
		t.Fatal("toggle should resume")
	}
	a.Step(context.Background())
	if len(f.volume.Calls()) != 1 {
		t.Errorf("resumed loop should actuate, calls = %v", f.volume.Calls())
	}
}

func TestStep_QuitKey(t *testing.T) {
	f := newFixture(t, 1)
	f.display.quitAfter = 1
	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cam.Open(); err != nil {
		t.Fatal(err)
	}

	if quit, _ := a.Step(context.Background()); !quit {
		t.Error("expected quit after first frame")
	}
}

func TestStep_PublishesFramesToViewers(t *testing.T) {
	f := newFixture(t, 1)
	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cam.Open(); err != nil {
		t.Fatal(err)
	}

	frames, cancel := a.Frames().Subscribe()
	defer cancel()

	a.Step(context.Background())
	select {
	case jpg := <-frames:
		if len(jpg) < 2 || jpg[0] != 0xFF || jpg[1] != 0xD8 {
			t.Error("expected a JPEG frame")
		}
	default:
		t.Fatal("no frame published")
	}
}

func TestScreenshot(t *testing.T) {
	f := newFixture(t, 1)

	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Screenshot(context.Background(), "api"); !errors.Is(err, ErrScreenshotsDisabled) {
		t.Errorf("expected ErrScreenshotsDisabled, got %v", err)
	}

	capturer, err := screenshot.New(t.TempDir(), screenshot.WithMethods(fileMethod{}))
	if err != nil {
		t.Fatal(err)
	}
	f.cfg.Capturer = capturer
	a, err = New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}

	path, err := a.Screenshot(context.Background(), "cli")
	if err != nil {
		t.Fatalf("Screenshot() failed: %v", err)
	}
	if path == "" {
		t.Error("expected a path")
	}
}

func TestRecordApply_UpdatesStatus(t *testing.T) {
	f := newFixture(t, 1)
	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	a.RecordApply(context.Background(), control.Brightness, 45, nil, at)
	a.RecordApply(context.Background(), control.Volume, 55, errors.New("pactl: exit 1"), at)

	st := a.Status()
	b := st.Channels[control.Brightness]
	if b.LastApplied != 45 || b.LastAppliedAt == nil || !b.LastAppliedAt.Equal(at) {
		t.Errorf("unexpected brightness status %+v", b)
	}
	if v := st.Channels[control.Volume]; v.LastError != "pactl: exit 1" || v.LastAppliedAt != nil {
		t.Errorf("unexpected volume status %+v", v)
	}
}

func TestFrameHub(t *testing.T) {
	h := NewFrameHub()
	if h.Active() {
		t.Fatal("new hub should have no viewers")
	}
	h.Publish([]byte("dropped"))

	frames, cancel := h.Subscribe()
	if !h.Active() {
		t.Fatal("hub should be active with a viewer")
	}

	h.Publish([]byte("one"))
	h.Publish([]byte("two"))
	if got := string(<-frames); got != "two" {
		t.Errorf("slow viewer should get the latest frame, got %q", got)
	}

	cancel()
	cancel()
	if h.Active() {
		t.Error("hub should be idle after cancel")
	}
}

func TestInterpretUnknownLabelIgnored(t *testing.T) {
	f := newFixture(t, 1)
	f.det.SetHands([]detector.Hand{detector.PinchLandmarks("Unknown", thumbAt, index220)})
	a, err := New(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.cam.Open(); err != nil {
		t.Fatal(err)
	}

	a.Step(context.Background())
	if len(f.volume.Calls())+len(f.brightness.Calls()) != 0 {
		t.Error("unknown handedness must not drive a channel")
	}
}
