package api

import (
	"encoding/json"
	"net/http"
)

// StatusHandler serves GET /api/status and POST /api/pause.
type StatusHandler struct {
	ctrl Controller
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(ctrl Controller) *StatusHandler {
	return &StatusHandler{ctrl: ctrl}
}

type pauseRequest struct {
	Paused *bool `json:"paused"`
}

type pauseResponse struct {
	Paused bool `json:"paused"`
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/status" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	case r.URL.Path == "/api/pause" && r.Method == http.MethodPost:
		h.pause(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// pause handles POST /api/pause with {"paused": bool}.
func (h *StatusHandler) pause(w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Paused == nil {
		writeError(w, http.StatusBadRequest, "paused is required")
		return
	}

	h.ctrl.SetPaused(*req.Paused)
	writeJSON(w, http.StatusAccepted, pauseResponse{Paused: *req.Paused})
}
