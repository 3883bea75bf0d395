package api

import (
	"net/http"

	"github.com/ayusman/pinchctl/internal/control"
	"github.com/ayusman/pinchctl/internal/store"
)

// Default and maximum page sizes for history listings.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// AdjustmentsHandler serves GET /api/adjustments?channel=&limit=.
type AdjustmentsHandler struct {
	store *store.Store
}

// NewAdjustmentsHandler creates an AdjustmentsHandler.
func NewAdjustmentsHandler(s *store.Store) *AdjustmentsHandler {
	return &AdjustmentsHandler{store: s}
}

type listAdjustmentsResponse struct {
	Adjustments []*store.Adjustment `json:"adjustments"`
}

// ServeHTTP implements http.Handler.
func (h *AdjustmentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	channel := r.URL.Query().Get("channel")
	if channel != "" {
		if _, err := control.ParseChannel(channel); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	limit, ok := queryLimit(r, DefaultLimit, MaxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	adjustments, err := h.store.Adjustments().List(channel, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list adjustments")
		return
	}
	if adjustments == nil {
		adjustments = []*store.Adjustment{}
	}
	writeJSON(w, http.StatusOK, listAdjustmentsResponse{Adjustments: adjustments})
}
