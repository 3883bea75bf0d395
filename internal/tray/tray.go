// Package tray provides the system tray menu for pinchctl.
package tray

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/pinchctl/internal/app"
	"github.com/ayusman/pinchctl/internal/store"
	"github.com/ayusman/pinchctl/pkg/logger"
)

// Controller is the part of the control loop the tray drives.
type Controller interface {
	Status() app.Status
	TogglePause() bool
	Screenshot(ctx context.Context, trigger string) (string, error)
}

// Tray represents the system tray application.
type Tray struct {
	ctrl    Controller
	log     logger.Logger
	refresh time.Duration
	onQuit  func()
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuPause  *systray.MenuItem
	menuLevels []*systray.MenuItem
	menuShot   *systray.MenuItem
	stop       chan struct{}
	ready      bool
	quitting   bool
}

// New creates a Tray bound to ctrl. onQuit runs when Quit is chosen.
func New(ctrl Controller, onQuit func(), log logger.Logger) *Tray {
	if log == nil {
		log = logger.Nop()
	}
	return &Tray{
		ctrl:    ctrl,
		log:     log.Named("tray"),
		refresh: time.Second,
		onQuit:  onQuit,
		stop:    make(chan struct{}),
	}
}

// Run starts the system tray. It must be called from the main goroutine
// and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from any goroutine. A Quit that arrives before the
// menu is ready takes effect once it is.
func (t *Tray) Quit() {
	t.mu.Lock()
	t.quitting = true
	ready := t.ready
	t.mu.Unlock()

	if ready {
		systray.Quit()
	}
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("pinchctl")
	systray.SetTooltip("pinchctl pinch controls")

	st := t.ctrl.Status()

	t.mu.Lock()
	t.menuPause = systray.AddMenuItem(PauseTitle(st.Paused), "Pause or resume gesture control")
	systray.AddSeparator()
	for _, cs := range levelsOf(st) {
		item := systray.AddMenuItem(LevelTitle(cs), "Current level")
		item.Disable()
		t.menuLevels = append(t.menuLevels, item)
	}
	systray.AddSeparator()
	t.menuShot = systray.AddMenuItem("Take Screenshot", "Capture the screen")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit pinchctl")
	t.ready = true
	quitting := t.quitting
	t.mu.Unlock()

	if quitting {
		systray.Quit()
		return
	}

	go t.refreshLoop()

	go func() {
		for {
			select {
			case <-t.menuPause.ClickedCh:
				t.handleToggle()
			case <-t.menuShot.ClickedCh:
				t.handleScreenshot()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}

// refreshLoop keeps the level items current.
func (t *Tray) refreshLoop() {
	ticker := time.NewTicker(t.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.update(t.ctrl.Status())
		}
	}
}

// update rewrites the menu titles from st.
func (t *Tray) update(st app.Status) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuPause != nil {
		t.menuPause.SetTitle(PauseTitle(st.Paused))
	}
	levels := levelsOf(st)
	for i, item := range t.menuLevels {
		if i < len(levels) {
			item.SetTitle(LevelTitle(levels[i]))
		}
	}
}

// handleToggle flips pause and updates the toggle title.
func (t *Tray) handleToggle() {
	paused := t.ctrl.TogglePause()
	t.log.Info(context.Background(), "pause toggled", logger.Bool("paused", paused))

	t.mu.RLock()
	if t.menuPause != nil {
		t.menuPause.SetTitle(PauseTitle(paused))
	}
	t.mu.RUnlock()
}

// handleScreenshot takes a screenshot through the loop.
func (t *Tray) handleScreenshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	path, err := t.ctrl.Screenshot(ctx, store.TriggerTray)
	if err != nil {
		t.log.Warn(ctx, "tray screenshot failed", logger.Error(err))
		return
	}
	t.log.Info(ctx, "tray screenshot saved", logger.String("path", path))
}

// handleQuit runs the quit callback and closes the tray.
func (t *Tray) handleQuit() {
	if t.onQuit != nil {
		t.onQuit()
	}
	systray.Quit()
}

// PauseTitle is the toggle label for the given state.
func PauseTitle(paused bool) string {
	if paused {
		return "○ Paused"
	}
	return "● Active"
}

// LevelTitle renders a channel line such as "Volume: 55% (pactl)".
func LevelTitle(cs app.ChannelStatus) string {
	name := cs.Channel
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	title := fmt.Sprintf("%s: %d%%", name, cs.Percent)
	if cs.Backend != "" {
		title += " (" + cs.Backend + ")"
	}
	if cs.LastError != "" {
		title += " !"
	}
	return title
}

// levelsOf returns one entry per channel even before the first frame.
func levelsOf(st app.Status) []app.ChannelStatus {
	if len(st.Channels) > 0 {
		return st.Channels
	}
	return []app.ChannelStatus{{Channel: "volume"}, {Channel: "brightness"}}
}
