package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns either fixed hands or, when a sequence is queued, one entry per call.
type MockDetector struct {
	mu       sync.Mutex
	hands    []Hand
	sequence [][]Hand
	err      error
	calls    int
	closed   bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// QueueFrames queues per-call results. Once drained, Detect falls back to SetHands.
func (m *MockDetector) QueueFrames(frames ...[]Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = append(m.sequence, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(_ *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// PinchLandmarks returns a full 21-point hand with the thumb tip and index tip
// at the given normalized positions. The remaining joints sit on a relaxed
// open hand around the wrist and never affect the pinch.
func PinchLandmarks(label string, thumb, index Point) Hand {
	hand := Hand{
		Points:     make([]Point, NumLandmarks),
		Handedness: label,
		Score:      0.95,
	}

	wrist := Point{X: (thumb.X + index.X) / 2, Y: 0.85}
	hand.Points[Wrist] = wrist

	// Thumb chain walks from the wrist toward the thumb tip.
	for i, t := range []float64{0.25, 0.5, 0.75} {
		hand.Points[ThumbCMC+i] = lerp(wrist, thumb, t)
	}
	hand.Points[ThumbTip] = thumb

	for i, t := range []float64{0.4, 0.6, 0.8} {
		hand.Points[IndexMCP+i] = lerp(wrist, index, t)
	}
	hand.Points[IndexTip] = index

	// Middle, ring and pinky fan out beside the index finger.
	for f := 0; f < 3; f++ {
		base := MiddleMCP + f*4
		offset := -0.03 * float64(f+1)
		tip := Point{X: index.X + offset, Y: index.Y + 0.02*float64(f)}
		for j, t := range []float64{0.4, 0.6, 0.8, 1} {
			hand.Points[base+j] = lerp(wrist, tip, t)
		}
	}

	return hand
}

// OpenPalmLandmarks returns a hand with thumb and index far apart.
func OpenPalmLandmarks(label string) Hand {
	return PinchLandmarks(label, Point{X: 0.40, Y: 0.55}, Point{X: 0.62, Y: 0.30})
}

// ClosedPinchLandmarks returns a hand with thumb and index touching.
func ClosedPinchLandmarks(label string) Hand {
	return PinchLandmarks(label, Point{X: 0.50, Y: 0.50}, Point{X: 0.51, Y: 0.50})
}

func lerp(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
