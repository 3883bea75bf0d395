// Package display shows annotated frames and reads key presses.
package display

import (
	"sync"

	"gocv.io/x/gocv"
)

// NoKey is returned by PollKey when nothing was pressed.
const NoKey = -1

// Display shows frames and reports key presses.
type Display interface {
	Show(frame *gocv.Mat) error
	// PollKey returns the pressed key's low byte, or NoKey.
	PollKey() int
	Close() error
}

// Window is a native OpenCV window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window titled name.
func NewWindow(name string) *Window {
	return &Window{win: gocv.NewWindow(name)}
}

// Show implements Display.
func (w *Window) Show(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return nil
	}
	w.win.IMShow(*frame)
	return nil
}

// PollKey implements Display. It also pumps the window event loop.
func (w *Window) PollKey() int {
	k := w.win.WaitKey(1)
	if k < 0 {
		return NoKey
	}
	return k & 0xFF
}

// Close implements Display.
func (w *Window) Close() error {
	return w.win.Close()
}

// Headless discards frames. Keys can be injected with Press.
type Headless struct {
	mu    sync.Mutex
	keys  []int
	shown int
}

// NewHeadless returns a Display without a window.
func NewHeadless() *Headless {
	return &Headless{}
}

// Show implements Display.
func (h *Headless) Show(_ *gocv.Mat) error {
	h.mu.Lock()
	h.shown++
	h.mu.Unlock()
	return nil
}

// Press queues a key for the next PollKey.
func (h *Headless) Press(key byte) {
	h.mu.Lock()
	h.keys = append(h.keys, int(key))
	h.mu.Unlock()
}

// PollKey implements Display.
func (h *Headless) PollKey() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.keys) == 0 {
		return NoKey
	}
	k := h.keys[0]
	h.keys = h.keys[1:]
	return k
}

// Shown returns how many frames were shown.
func (h *Headless) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Close implements Display.
func (h *Headless) Close() error {
	return nil
}
