package app

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchctl/internal/capture"
	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/detector"
)

// Normalized positions on a 1280x720 frame: thumb at (640,360), index 220px
// or 50px to its right.
var (
	thumbAt  = detector.Point{X: 0.5, Y: 0.5}
	index220 = detector.Point{X: 0.5 + 220.0/1280, Y: 0.5}
	index50  = detector.Point{X: 0.5 + 50.0/1280, Y: 0.5}
)

// pinchHands returns a mirrored-frame observation: "Right" drives volume at
// full distance and "Left" drives brightness at minimum distance.
func pinchHands() []detector.Hand {
	return []detector.Hand{
		detector.PinchLandmarks(detector.LabelRight, thumbAt, index220),
		detector.PinchLandmarks(detector.LabelLeft, thumbAt, index50),
	}
}

type recordingSetter struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (s *recordingSetter) Set(_ context.Context, percent int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, percent)
	return s.err
}

func (s *recordingSetter) Calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.calls...)
}

// scriptedDisplay quits after a number of frames and can press the
// screenshot key on a given frame.
type scriptedDisplay struct {
	mu           sync.Mutex
	shown        int
	quitAfter    int
	screenshotOn int
	closed       bool
}

func (d *scriptedDisplay) Show(_ *gocv.Mat) error {
	d.mu.Lock()
	d.shown++
	d.mu.Unlock()
	return nil
}

func (d *scriptedDisplay) PollKey() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.quitAfter > 0 && d.shown >= d.quitAfter:
		return 'q'
	case d.screenshotOn > 0 && d.shown == d.screenshotOn:
		return 's'
	}
	return -1
}

func (d *scriptedDisplay) Close() error {
	d.closed = true
	return nil
}

type fileMethod struct{}

func (fileMethod) Name() string { return "file" }

func (fileMethod) Capture(_ context.Context, path string, overlay *gocv.Mat) (string, error) {
	if overlay == nil {
		return path, os.WriteFile(path, []byte("no overlay"), 0o644)
	}
	if overlay.Empty() {
		return "", errors.New("empty overlay")
	}
	return path, os.WriteFile(path, []byte("overlay"), 0o644)
}

type fixture struct {
	cam        *capture.MockCamera
	det        *detector.MockDetector
	volume     *recordingSetter
	brightness *recordingSetter
	display    *scriptedDisplay
	cfg        Config
}

func newFixture(t *testing.T, frames int) *fixture {
	t.Helper()
	mats := capture.BlankFrames(frames, 1280, 720)
	t.Cleanup(func() {
		for _, m := range mats {
			m.Close()
		}
	})

	f := &fixture{
		cam:        capture.NewMockCamera(mats, true),
		det:        detector.NewMockDetector(),
		volume:     &recordingSetter{},
		brightness: &recordingSetter{},
		display:    &scriptedDisplay{},
	}
	f.cfg = Config{
		Camera:   f.cam,
		Detector: f.det,
		Setters:  [control.ChannelCount]control.Setter{f.volume, f.brightness},
		Backends: [control.ChannelCount]string{"test-volume", "test-brightness"},
		Display:  f.display,
		Mirror:   true,
		QuitKey:  'q',
	}
	return f
}
