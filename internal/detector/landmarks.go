// Package detector provides hand tracking interfaces and types.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Handedness labels as reported by the provider. They describe the hand as it
// appears in the analyzed image, which is not the anatomical side when the frame
// was mirrored.
const (
	LabelLeft  = "Left"
	LabelRight = "Right"
)

// Point is a landmark normalized to the frame: X and Y in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hand is one tracked hand in one frame.
type Hand struct {
	Points     []Point `json:"points"`
	Handedness string  `json:"handedness"`
	Score      float64 `json:"score"`
}

// Landmark returns point i and whether the hand has it.
func (h *Hand) Landmark(i int) (Point, bool) {
	if h == nil || i < 0 || i >= len(h.Points) {
		return Point{}, false
	}
	return h.Points[i], true
}
