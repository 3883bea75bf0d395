package capture

import (
	"image"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"gocv.io/x/gocv"
)

// Frame differencing parameters.
const (
	// BlurKernel is the Gaussian blur kernel size applied before differencing.
	BlurKernel = 21
	// PixelDelta is the per-pixel gray level change that counts as motion.
	PixelDelta = 25
)

// MotionDetector reports the share of pixels that changed since the previous frame.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	hasPrev   bool
	mu        sync.Mutex
}

// NewMotionDetector creates a detector that fires when more than threshold
// percent of the pixels change between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect compares frame with the previous one. The first frame only sets the
// baseline and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Pt(BlurKernel, BlurKernel), 0, 0, gocv.BorderDefault)

	if !m.hasPrev {
		gray.CopyTo(&m.prev)
		m.hasPrev = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prev, &diff)
	gocv.Threshold(diff, &diff, PixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	gray.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset drops the baseline frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// Close releases the baseline frame. The detector stays usable.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *MotionDetector) resetLocked() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.hasPrev = false
}

// SetThreshold sets the motion threshold. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// RateGovernor switches a camera between an idle and an active frame rate.
// Motion switches to active immediately; idleAfter without motion drops back.
type RateGovernor struct {
	idleFPS    int
	activeFPS  int
	idleAfter  time.Duration
	clock      clock.Clock
	active     bool
	lastMotion time.Time
}

// NewRateGovernor creates a governor that starts in idle mode.
func NewRateGovernor(idleFPS, activeFPS int, idleAfter time.Duration, clk clock.Clock) *RateGovernor {
	if clk == nil {
		clk = clock.New()
	}
	return &RateGovernor{
		idleFPS:   idleFPS,
		activeFPS: activeFPS,
		idleAfter: idleAfter,
		clock:     clk,
	}
}

// Observe records whether the last frame had motion and returns the frame
// rate to use and whether it changed.
func (g *RateGovernor) Observe(motion bool) (fps int, changed bool) {
	now := g.clock.Now()
	switch {
	case motion:
		g.lastMotion = now
		if !g.active {
			g.active = true
			return g.activeFPS, true
		}
	case g.active && now.Sub(g.lastMotion) > g.idleAfter:
		g.active = false
		return g.idleFPS, true
	}
	return g.FPS(), false
}

// FPS returns the current frame rate.
func (g *RateGovernor) FPS() int {
	if g.active {
		return g.activeFPS
	}
	return g.idleFPS
}

// Active reports whether the governor is in active mode.
func (g *RateGovernor) Active() bool {
	return g.active
}
