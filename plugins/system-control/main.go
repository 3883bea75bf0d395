// Package main is the system-control plugin. It sets volume and brightness
// levels through the platform's command line tools.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Source string          `json:"source"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// LevelParams carries the target percent for the *-set actions.
type LevelParams struct {
	Level int `json:"level"`
}

var errUnsupported = errors.New("unsupported on this platform")

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	cmds, err := commandsFor(runtime.GOOS, req)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	// Commands are alternatives: the first one that succeeds wins.
	var lastErr error
	for _, argv := range cmds {
		if lastErr = run(argv); lastErr == nil {
			writeResponse(Response{Success: true})
			return
		}
	}
	writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, lastErr)})
}

// commandsFor returns candidate command lines for req on goos.
func commandsFor(goos string, req Request) ([][]string, error) {
	level := 0
	switch req.Action {
	case "volume-set", "brightness-set":
		var p LevelParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return nil, fmt.Errorf("invalid params: %v", err)
			}
		}
		if p.Level < 0 || p.Level > 100 {
			return nil, fmt.Errorf("level %d out of range [0,100]", p.Level)
		}
		level = p.Level
	case "volume-up", "volume-down", "volume-mute":
	default:
		return nil, fmt.Errorf("unknown action: %s", req.Action)
	}

	pct := strconv.Itoa(level) + "%"

	switch goos {
	case "darwin":
		switch req.Action {
		case "volume-set":
			return [][]string{{"osascript", "-e", "set volume output volume " + strconv.Itoa(level)}}, nil
		case "volume-up":
			return [][]string{{"osascript", "-e", "set volume output volume ((output volume of (get volume settings)) + 10)"}}, nil
		case "volume-down":
			return [][]string{{"osascript", "-e", "set volume output volume ((output volume of (get volume settings)) - 10)"}}, nil
		case "volume-mute":
			return [][]string{{"osascript", "-e", "set volume output muted (not (output muted of (get volume settings)))"}}, nil
		case "brightness-set":
			return [][]string{{"brightness", strconv.FormatFloat(float64(level)/100, 'f', 2, 64)}}, nil
		}
	case "linux":
		switch req.Action {
		case "volume-set":
			return [][]string{
				{"pactl", "set-sink-volume", "@DEFAULT_SINK@", pct},
				{"amixer", "-q", "sset", "Master", pct},
			}, nil
		case "volume-up":
			return [][]string{
				{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "+10%"},
				{"amixer", "-q", "sset", "Master", "10%+"},
			}, nil
		case "volume-down":
			return [][]string{
				{"pactl", "set-sink-volume", "@DEFAULT_SINK@", "-10%"},
				{"amixer", "-q", "sset", "Master", "10%-"},
			}, nil
		case "volume-mute":
			return [][]string{
				{"pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"},
				{"amixer", "-q", "sset", "Master", "toggle"},
			}, nil
		case "brightness-set":
			return [][]string{{"brightnessctl", "-q", "set", pct}}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", req.Action, errUnsupported)
}

func run(argv []string) error {
	output, err := exec.Command(argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, string(output))
	}
	return nil
}

func writeResponse(resp Response) {
	_ = json.NewEncoder(os.Stdout).Encode(resp)
}
