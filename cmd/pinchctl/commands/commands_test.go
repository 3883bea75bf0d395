package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/pinchctl/internal/config"
	"github.com/ayusman/pinchctl/internal/store"
)

// writeConfig points data_dir at a temp dir and returns the config path.
func writeConfig(t *testing.T) (path, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	path = filepath.Join(dir, "pinchctl.yaml")
	body := "data_dir: " + dataDir + "\nlog_level: error\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path, dataDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	Root.SetOut(&out)
	Root.SetErr(&out)
	Root.SetArgs(args)
	err := Root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedHistory(t *testing.T, dataDir string) {
	t.Helper()
	cfg := config.New()
	cfg.DataDir = dataDir
	s, err := store.New(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, a := range []store.Adjustment{
		{Channel: "volume", Percent: 55, Success: true},
		{Channel: "brightness", Percent: 45, Success: true},
		{Channel: "volume", Percent: 60, Error: "pactl: exit status 1"},
	} {
		a.AppliedAt = base.Add(time.Duration(i) * time.Second)
		if err := s.Adjustments().Create(&a); err != nil {
			t.Fatalf("failed to create adjustment: %v", err)
		}
	}
}

func TestHistory(t *testing.T) {
	path, dataDir := writeConfig(t)
	seedHistory(t, dataDir)

	t.Run("all channels", func(t *testing.T) {
		out, err := execute(t, "history", "--config", path, "--channel", "", "--limit", "20")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header and 3 rows, got %q", out)
		}
		if !strings.HasPrefix(lines[0], "TIME") {
			t.Errorf("expected header, got %q", lines[0])
		}
		if !strings.Contains(lines[1], "60%") || !strings.Contains(lines[1], "error: pactl: exit status 1") {
			t.Errorf("expected newest failed row first, got %q", lines[1])
		}
	})

	t.Run("channel and limit", func(t *testing.T) {
		out, err := execute(t, "history", "--config", path, "--channel", "brightness", "--limit", "5")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if strings.Contains(out, "volume") || !strings.Contains(out, "45%") {
			t.Errorf("expected only brightness rows, got %q", out)
		}
	})

	t.Run("unknown channel", func(t *testing.T) {
		if _, err := execute(t, "history", "--config", path, "--channel", "contrast", "--limit", "5"); err == nil {
			t.Error("expected error for unknown channel")
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		if _, err := execute(t, "history", "--config", path, "--channel", "", "--limit", "0"); err == nil {
			t.Error("expected error for zero limit")
		}
	})
}

func TestHistory_Empty(t *testing.T) {
	path, _ := writeConfig(t)

	out, err := execute(t, "history", "--config", path, "--channel", "", "--limit", "20")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if strings.TrimSpace(out) != "no adjustments recorded" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLoadConfig_LogLevelFlag(t *testing.T) {
	path, _ := writeConfig(t)

	if _, err := execute(t, "history", "--config", path, "--log-level", "debug", "--channel", "", "--limit", "1"); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected flag to override log level, got %q", cfg.LogLevel)
	}

	if _, err := execute(t, "history", "--config", path, "--log-level", "loud"); err == nil {
		t.Error("expected error for unknown log level")
	}
	logLevel = ""
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := execute(t, "history", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--log-level", "")
	if err == nil {
		t.Error("expected error for missing config file")
	}
}
