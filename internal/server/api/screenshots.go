package api

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ayusman/pinchctl/internal/app"
	"github.com/ayusman/pinchctl/internal/screenshot"
	"github.com/ayusman/pinchctl/internal/store"
)

// ScreenshotsHandler serves GET and POST /api/screenshots.
type ScreenshotsHandler struct {
	ctrl     Controller
	store    *store.Store
	capturer *screenshot.Capturer
	timeout  time.Duration
}

// NewScreenshotsHandler creates a ScreenshotsHandler. s and c may be nil;
// listing then comes from whichever is available.
func NewScreenshotsHandler(ctrl Controller, s *store.Store, c *screenshot.Capturer) *ScreenshotsHandler {
	return &ScreenshotsHandler{ctrl: ctrl, store: s, capturer: c, timeout: 10 * time.Second}
}

type screenshotResponse struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Trigger string `json:"trigger,omitempty"`
	TakenAt string `json:"taken_at"`
}

type listScreenshotsResponse struct {
	Screenshots []screenshotResponse `json:"screenshots"`
}

// ServeHTTP implements http.Handler.
func (h *ScreenshotsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.take(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/screenshots.
func (h *ScreenshotsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r, DefaultLimit, MaxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	out := []screenshotResponse{}
	switch {
	case h.store != nil:
		shots, err := h.store.Screenshots().List(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list screenshots")
			return
		}
		for _, s := range shots {
			out = append(out, screenshotResponse{
				Path:    s.Path,
				Name:    filepath.Base(s.Path),
				Trigger: s.Trigger,
				TakenAt: s.CreatedAt.Format(time.RFC3339),
			})
		}
	case h.capturer != nil:
		entries, err := h.capturer.List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list screenshots")
			return
		}
		for i, e := range entries {
			if i == limit {
				break
			}
			out = append(out, screenshotResponse{Path: e.Path, Name: e.Name, TakenAt: e.ModTime.Format(time.RFC3339)})
		}
	}
	writeJSON(w, http.StatusOK, listScreenshotsResponse{Screenshots: out})
}

// take handles POST /api/screenshots.
func (h *ScreenshotsHandler) take(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	path, err := h.ctrl.Screenshot(ctx, store.TriggerAPI)
	switch {
	case errors.Is(err, app.ErrScreenshotsDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, screenshot.ErrAllMethodsFailed):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, screenshotResponse{
		Path:    path,
		Name:    filepath.Base(path),
		Trigger: store.TriggerAPI,
		TakenAt: time.Now().Format(time.RFC3339),
	})
}
