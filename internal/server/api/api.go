// Package api provides HTTP API handlers for pinchctl.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ayusman/pinchctl/internal/app"
)

// Controller is the part of the control loop the API drives.
type Controller interface {
	Status() app.Status
	SetPaused(paused bool)
	Screenshot(ctx context.Context, trigger string) (string, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// queryLimit parses ?limit=, falling back to def and capping at maxLimit.
func queryLimit(r *http.Request, def, maxLimit int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, true
}
