package handler

import (
	"log/slog"
	"net/http"
	"time"

	"flasharb/internal/monitor"
)

// MonitorStatus is the view of the scan loop the health endpoint exposes.
type MonitorStatus interface {
	State() monitor.State
	LastScanAt() time.Time
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	mon       MonitorStatus // optional; nil in server-only mode
	network   string
	startedAt time.Time
	logger    *slog.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(mon MonitorStatus, network string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		mon:       mon,
		network:   network,
		startedAt: time.Now().UTC(),
		logger:    logger,
	}
}

// HealthCheck responds with the server liveness plus the monitor state.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"network":        h.network,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
	if h.mon != nil {
		body["monitor_state"] = string(h.mon.State())
		if last := h.mon.LastScanAt(); !last.IsZero() {
			body["last_scan_at"] = last.Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, body)
}
