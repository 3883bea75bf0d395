package control

import "fmt"

const (
	// DefaultAlpha is the weight of a new reading.
	DefaultAlpha = 0.1
	// InitialValue seeds every channel at startup.
	InitialValue = 50.0
)

// Filter is an exponential moving average applied per channel.
// It carries only its coefficient; the smoothed values live in State.
type Filter struct {
	alpha float64
}

// NewFilter creates a filter with the given weight for new readings.
func NewFilter(alpha float64) (Filter, error) {
	if alpha <= 0 || alpha > 1 {
		return Filter{}, fmt.Errorf("smoothing alpha must be in (0,1], got %v", alpha)
	}
	return Filter{alpha: alpha}, nil
}

// DefaultFilter returns a filter using DefaultAlpha.
func DefaultFilter() Filter {
	return Filter{alpha: DefaultAlpha}
}

// Alpha returns the weight given to new readings.
func (f Filter) Alpha() float64 {
	return f.alpha
}

// Smooth blends raw into prev: (1-alpha)*prev + alpha*raw.
// With readings in [0,100] the result stays in [0,100], so no clamping is applied.
func (f Filter) Smooth(prev, raw float64) float64 {
	return (1-f.alpha)*prev + f.alpha*raw
}

// Update smooths raw into the state of ch and returns the new state and value.
func (f Filter) Update(s State, ch Channel, raw float64) (State, float64) {
	cs := s[ch]
	cs.Value = f.Smooth(cs.Value, raw)
	return s.With(ch, cs), cs.Value
}
