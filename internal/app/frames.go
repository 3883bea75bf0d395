package app

import "sync"

// FrameHub fans annotated JPEG frames out to stream viewers. Each subscriber
// holds at most one pending frame; slow viewers miss frames.
type FrameHub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// NewFrameHub creates an empty hub.
func NewFrameHub() *FrameHub {
	return &FrameHub{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a viewer. Call cancel when done.
func (h *FrameHub) Subscribe() (frames <-chan []byte, cancel func()) {
	ch := make(chan []byte, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Active reports whether anyone is watching, so frames are only encoded then.
func (h *FrameHub) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs) > 0
}

// Publish hands frame to every subscriber, replacing any frame it has not read yet.
func (h *FrameHub) Publish(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- frame:
		default:
		}
	}
}
