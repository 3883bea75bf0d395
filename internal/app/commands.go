package app

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchctl/internal/screenshot"
	"github.com/ayusman/pinchctl/internal/store"
	"github.com/ayusman/pinchctl/pkg/logger"
)

type commandKind int

const (
	cmdScreenshot commandKind = iota
	cmdPause
)

type command struct {
	kind    commandKind
	paused  bool
	trigger string
	reply   chan screenshotResult
}

type screenshotResult struct {
	path string
	err  error
}

// SetPaused pauses or resumes actuation. Frames keep being shown while paused.
// While the loop runs the change takes effect on the next frame.
func (a *App) SetPaused(paused bool) {
	if a.running() {
		select {
		case a.cmds <- command{kind: cmdPause, paused: paused}:
			return
		default:
		}
	}
	a.applyPause(paused)
}

// TogglePause flips the paused state and returns the new value.
func (a *App) TogglePause() bool {
	p := !a.Paused()
	a.SetPaused(p)
	return p
}

func (a *App) applyPause(paused bool) {
	a.mu.Lock()
	changed := a.status.Paused != paused
	a.status.Paused = paused
	a.mu.Unlock()
	if changed {
		a.log.Info(context.Background(), "actuation paused", logger.Bool("paused", paused))
	}
}

// Screenshot takes a screenshot. While the loop runs it is taken between
// frames with the current annotated frame as overlay; otherwise immediately.
func (a *App) Screenshot(ctx context.Context, trigger string) (string, error) {
	if a.config.Capturer == nil {
		return "", ErrScreenshotsDisabled
	}
	if !a.running() {
		return a.takeScreenshot(ctx, nil, trigger)
	}

	reply := make(chan screenshotResult, 1)
	select {
	case a.cmds <- command{kind: cmdScreenshot, trigger: trigger, reply: reply}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-reply:
		return res.path, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *App) running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status.Running
}

// drainCommands runs queued commands. Called by the loop between frames.
func (a *App) drainCommands(ctx context.Context, frame *gocv.Mat) {
	for {
		select {
		case cmd := <-a.cmds:
			a.execute(ctx, cmd, frame)
		default:
			return
		}
	}
}

func (a *App) execute(ctx context.Context, cmd command, frame *gocv.Mat) {
	switch cmd.kind {
	case cmdPause:
		a.applyPause(cmd.paused)
	case cmdScreenshot:
		path, err := a.takeScreenshot(ctx, frame, cmd.trigger)
		cmd.reply <- screenshotResult{path: path, err: err}
	}
}

// failPending answers commands left in the queue after the loop stopped.
func (a *App) failPending() {
	for {
		select {
		case cmd := <-a.cmds:
			switch cmd.kind {
			case cmdPause:
				a.applyPause(cmd.paused)
			case cmdScreenshot:
				cmd.reply <- screenshotResult{err: ErrNotRunning}
			}
		default:
			return
		}
	}
}

func (a *App) takeScreenshot(ctx context.Context, overlay *gocv.Mat, trigger string) (string, error) {
	if a.config.Capturer == nil {
		return "", ErrScreenshotsDisabled
	}

	a.mu.RLock()
	session := a.status.SessionID
	a.mu.RUnlock()

	return SaveScreenshot(ctx, ScreenshotJob{
		Capturer:  a.config.Capturer,
		Store:     a.config.Store,
		Keep:      a.config.ScreenshotKeep,
		SessionID: session,
		Trigger:   trigger,
		Overlay:   overlay,
		At:        a.clock.Now(),
	}, a.log)
}

// ScreenshotJob describes one capture and its bookkeeping.
type ScreenshotJob struct {
	Capturer *screenshot.Capturer
	// Store is optional; without it nothing is recorded.
	Store     *store.Store
	Keep      int
	SessionID string
	Trigger   string
	Overlay   *gocv.Mat
	At        time.Time
}

// SaveScreenshot captures, records the file in history and prunes old
// captures beyond job.Keep. Only the capture itself can fail the call.
func SaveScreenshot(ctx context.Context, job ScreenshotJob, log logger.Logger) (string, error) {
	c := job.Capturer
	if c == nil {
		return "", ErrScreenshotsDisabled
	}

	path, err := c.Capture(ctx, job.Overlay)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	if s := job.Store; s != nil {
		rec := &store.Screenshot{SessionID: job.SessionID, Path: path, Trigger: job.Trigger, CreatedAt: job.At}
		if err := s.Screenshots().Create(rec); err != nil {
			log.Warn(ctx, "failed to record screenshot", logger.Error(err))
		}
	}

	if job.Keep > 0 {
		removed, err := c.Cleanup(job.Keep)
		if err != nil {
			log.Warn(ctx, "screenshot cleanup failed", logger.Error(err))
		}
		if s := job.Store; s != nil && len(removed) > 0 {
			if err := s.Screenshots().DeleteByPath(removed...); err != nil {
				log.Warn(ctx, "failed to prune screenshot records", logger.Error(err))
			}
		}
	}
	return path, nil
}
