// Package control holds the signal pipeline shared by every control channel:
// per-channel state, the exponential filter and the rate-limited actuator.
package control

import (
	"fmt"
	"strings"
)

// Channel identifies one independently controlled system value.
type Channel int

const (
	Volume Channel = iota
	Brightness

	// ChannelCount is the number of channels; State is sized by it.
	ChannelCount = 2
)

var channelNames = [ChannelCount]string{"volume", "brightness"}

// String returns the lower-case channel name used in logs, metrics and storage.
func (c Channel) String() string {
	if c < 0 || int(c) >= ChannelCount {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c >= 0 && int(c) < ChannelCount
}

// ParseChannel parses a channel name case-insensitively.
func ParseChannel(s string) (Channel, error) {
	for i, name := range channelNames {
		if strings.EqualFold(s, name) {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q", s)
}

// Channels returns all channels in index order.
func Channels() []Channel {
	return []Channel{Volume, Brightness}
}
