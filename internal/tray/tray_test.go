package tray

import (
	"context"
	"errors"
	"testing"

	"github.com/ayusman/pinchctl/internal/app"
	"github.com/ayusman/pinchctl/internal/store"
)

type fakeController struct {
	paused   bool
	triggers []string
	err      error
}

func (f *fakeController) Status() app.Status { return app.Status{Paused: f.paused} }

func (f *fakeController) TogglePause() bool {
	f.paused = !f.paused
	return f.paused
}

func (f *fakeController) Screenshot(ctx context.Context, trigger string) (string, error) {
	f.triggers = append(f.triggers, trigger)
	return "/tmp/shot.png", f.err
}

func TestPauseTitle(t *testing.T) {
	if got := PauseTitle(false); got != "● Active" {
		t.Errorf("expected active title, got %q", got)
	}
	if got := PauseTitle(true); got != "○ Paused" {
		t.Errorf("expected paused title, got %q", got)
	}
}

func TestLevelTitle(t *testing.T) {
	tests := []struct {
		name string
		cs   app.ChannelStatus
		want string
	}{
		{"plain", app.ChannelStatus{Channel: "volume", Percent: 55}, "Volume: 55%"},
		{"with backend", app.ChannelStatus{Channel: "brightness", Percent: 45, Backend: "sysfs"}, "Brightness: 45% (sysfs)"},
		{"with error", app.ChannelStatus{Channel: "volume", Percent: 3, Backend: "pactl", LastError: "exit status 1"}, "Volume: 3% (pactl) !"},
		{"unnamed", app.ChannelStatus{Percent: 7}, ": 7%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelTitle(tt.cs); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLevelsOf(t *testing.T) {
	if got := levelsOf(app.Status{}); len(got) != 2 || got[0].Channel != "volume" || got[1].Channel != "brightness" {
		t.Errorf("expected placeholder channels, got %+v", got)
	}

	st := app.Status{Channels: []app.ChannelStatus{{Channel: "volume", Percent: 10}}}
	if got := levelsOf(st); len(got) != 1 || got[0].Percent != 10 {
		t.Errorf("expected status channels, got %+v", got)
	}
}

func TestTray_Handlers(t *testing.T) {
	ctrl := &fakeController{}
	tr := New(ctrl, nil, nil)

	t.Run("toggle without menu", func(t *testing.T) {
		tr.handleToggle()
		if !ctrl.paused {
			t.Error("expected paused after first toggle")
		}
		tr.handleToggle()
		if ctrl.paused {
			t.Error("expected resumed after second toggle")
		}
	})

	t.Run("screenshot uses tray trigger", func(t *testing.T) {
		tr.handleScreenshot()
		ctrl.err = errors.New("no display")
		tr.handleScreenshot()

		if len(ctrl.triggers) != 2 || ctrl.triggers[0] != store.TriggerTray {
			t.Errorf("expected two tray triggers, got %v", ctrl.triggers)
		}
	})

	t.Run("update without menu", func(t *testing.T) {
		tr.update(app.Status{Paused: true})
	})
}

var _ Controller = (*app.App)(nil)
