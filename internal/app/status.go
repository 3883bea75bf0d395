package app

import (
	"context"
	"time"

	"github.com/ayusman/pinchctl/internal/control"
)

// ChannelStatus is the published view of one channel.
type ChannelStatus struct {
	Channel       string     `json:"channel"`
	Value         float64    `json:"value"`
	Percent       int        `json:"percent"`
	Backend       string     `json:"backend"`
	LastApplied   int        `json:"last_applied"`
	LastAppliedAt *time.Time `json:"last_applied_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// Status is a snapshot safe to read from any goroutine.
type Status struct {
	Running   bool            `json:"running"`
	Paused    bool            `json:"paused"`
	SessionID string          `json:"session_id,omitempty"`
	Frames    int64           `json:"frames"`
	Dropped   int64           `json:"dropped"`
	Hands     int             `json:"hands"`
	FPS       int             `json:"fps"`
	Channels  []ChannelStatus `json:"channels"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Status returns the latest snapshot.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.status
	s.Channels = append([]ChannelStatus(nil), a.status.Channels...)
	return s
}

// Paused reports whether actuation is paused.
func (a *App) Paused() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status.Paused
}

// publishStatus is called by the loop goroutine after each iteration.
func (a *App) publishStatus(hands, fps int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.status.Channels == nil {
		a.status.Channels = make([]ChannelStatus, control.ChannelCount)
	}
	for _, ch := range control.Channels() {
		cs := &a.status.Channels[ch]
		st := a.state.Get(ch)
		cs.Channel = ch.String()
		cs.Value = st.Value
		cs.Percent = control.ClampPercent(st.Value)
		cs.Backend = a.config.Backends[ch]
	}
	a.status.Frames = a.frames
	a.status.Dropped = a.dropped
	a.status.Hands = hands
	a.status.FPS = fps
	a.status.UpdatedAt = a.clock.Now()
}

// RecordApply implements control.Recorder: it updates the snapshot and
// forwards to the session history when a store is configured.
func (a *App) RecordApply(ctx context.Context, ch control.Channel, percent int, err error, at time.Time) {
	a.mu.Lock()
	if a.status.Channels == nil {
		a.status.Channels = make([]ChannelStatus, control.ChannelCount)
	}
	cs := &a.status.Channels[ch]
	if err != nil {
		cs.LastError = err.Error()
	} else {
		t := at
		cs.LastApplied = percent
		cs.LastAppliedAt = &t
		cs.LastError = ""
	}
	a.mu.Unlock()

	if a.history != nil {
		a.history.RecordApply(ctx, ch, percent, err, at)
	}
}
