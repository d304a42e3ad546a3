package handler

import (
	"log/slog"
	"net/http"

	"flasharb/internal/domain"
)

// OpportunityHandler serves the opportunity history and metrics endpoints.
type OpportunityHandler struct {
	store  domain.OpportunityStore
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(store domain.OpportunityStore, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{store: store, logger: logger}
}

// ListRecent returns the most recent recorded opportunities.
// GET /api/opportunities/recent?limit=20
func (h *OpportunityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20, 200)

	opps, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list recent opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	if opps == nil {
		opps = []domain.FlashloanOpportunity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"opportunities": opps})
}

// Metrics returns aggregates over the full opportunity history.
// GET /api/metrics
func (h *OpportunityHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Metrics(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "opportunity metrics failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}
	writeJSON(w, http.StatusOK, m)
}
