package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rezkam/monodash/internal/domain"
	"github.com/rezkam/monodash/internal/infrastructure/http/response"
)

// GetFilter returns the current filter selection.
// GET /api/filter
func (h *TodoHandler) GetFilter(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Initialize(r.Context()); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, filterToResponse(h.svc.CurrentFilter()))
}

// SetFilter changes the filter selection. Names are case-insensitive.
// PUT /api/filter
func (h *TodoHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}
	selection, ok := domain.ParseFilterSelection(req.Selection)
	if !ok {
		response.ValidationError(w, "selection", "must be All, Active or Completed")
		return
	}

	if err := h.svc.SetFilter(r.Context(), selection); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, filterToResponse(h.svc.CurrentFilter()))
}

// GetSummary returns the dashboard counts.
// GET /api/summary
func (h *TodoHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Initialize(r.Context()); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, summaryToResponse(h.svc.Summary()))
}

// Reload discards in-memory state and loads it again from storage.
// POST /api/reload
func (h *TodoHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(r.Context()); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, summaryToResponse(h.svc.Summary()))
}
