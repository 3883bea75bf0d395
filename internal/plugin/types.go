// Package plugin discovers and runs executable plugins that talk JSON over stdin/stdout.
// pinchctl uses them as an out-of-process backend for volume and brightness.
package plugin

import (
	"encoding/json"
	"errors"
	"slices"
)

// Manifest describes a plugin's metadata and capabilities. It lives in
// <plugin_dir>/<name>/plugin.json.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Request is written to the plugin's stdin.
type Request struct {
	Action string          `json:"action"`
	Source string          `json:"source,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Err converts an unsuccessful response into an error.
func (r *Response) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == "" {
		return errors.New("plugin reported failure")
	}
	return errors.New(r.Error)
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the manifest lists action.
func (p *Plugin) Supports(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
