package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"flasharb/internal/domain"
)

// PriceHandler exposes the last cached price snapshot per pair, so operators
// can see what the scanner last saw and how stale it is.
type PriceHandler struct {
	cache  domain.PriceCache
	logger *slog.Logger
}

// NewPriceHandler creates a PriceHandler.
func NewPriceHandler(cache domain.PriceCache, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{cache: cache, logger: logger}
}

// GetSnapshot returns the cached quotes for one pair.
// GET /api/prices?pair=WETH/USDC
func (h *PriceHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("pair")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing pair query parameter")
		return
	}
	pair, err := domain.ParsePair(raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snapshot, ts, err := h.cache.GetSnapshot(r.Context(), pair.String())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no snapshot cached for pair")
			return
		}
		h.logger.ErrorContext(r.Context(), "get snapshot failed",
			slog.String("pair", pair.String()),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read snapshot")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pair":       pair.String(),
		"quotes":     snapshot,
		"scanned_at": ts.UTC().Format(time.RFC3339),
		"age_seconds": int64(time.Since(ts).Seconds()),
	})
}
