package control

import "time"

// ChannelState is the loop-owned state of one channel.
type ChannelState struct {
	// Value is the smoothed reading in [0,100].
	Value float64
	// LastAppliedAt is the time of the last successful setter call.
	// The zero time means the setter has never succeeded.
	LastAppliedAt time.Time
}

// State holds every channel's state. It is a value type: the loop threads it
// through each iteration and nothing else keeps a reference to it.
type State [ChannelCount]ChannelState

// NewState returns a State with every channel seeded at seed.
func NewState(seed float64) State {
	var s State
	for i := range s {
		s[i].Value = seed
	}
	return s
}

// Get returns the state of ch.
func (s State) Get(ch Channel) ChannelState {
	return s[ch]
}

// With returns a copy of s with ch replaced by cs.
func (s State) With(ch Channel, cs ChannelState) State {
	s[ch] = cs
	return s
}
