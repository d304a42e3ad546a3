package handler

import (
	"log/slog"
	"net/http"
)

// MonitorHandler serves the monitoring and notification toggle endpoints.
// The toggles flow through the config service so they persist and propagate
// to every instance sharing the store.
type MonitorHandler struct {
	svc    ConfigService
	logger *slog.Logger
}

// NewMonitorHandler creates a MonitorHandler.
func NewMonitorHandler(svc ConfigService, logger *slog.Logger) *MonitorHandler {
	return &MonitorHandler{svc: svc, logger: logger}
}

// StartMonitoring enables scanning; the loop picks the flag up on its next
// cycle.
// POST /api/monitor/start
func (h *MonitorHandler) StartMonitoring(w http.ResponseWriter, r *http.Request) {
	h.toggleMonitoring(w, r, true)
}

// StopMonitoring pauses scanning without stopping the process.
// POST /api/monitor/stop
func (h *MonitorHandler) StopMonitoring(w http.ResponseWriter, r *http.Request) {
	h.toggleMonitoring(w, r, false)
}

// StartNotifications enables operator alerts.
// POST /api/notifications/start
func (h *MonitorHandler) StartNotifications(w http.ResponseWriter, r *http.Request) {
	h.toggleNotifications(w, r, true)
}

// StopNotifications disables operator alerts.
// POST /api/notifications/stop
func (h *MonitorHandler) StopNotifications(w http.ResponseWriter, r *http.Request) {
	h.toggleNotifications(w, r, false)
}

func (h *MonitorHandler) toggleMonitoring(w http.ResponseWriter, r *http.Request, enabled bool) {
	cfg, err := h.svc.SetMonitoring(r.Context(), enabled)
	if err != nil {
		h.logger.WarnContext(r.Context(), "monitoring toggle failed",
			slog.Bool("enabled", enabled),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderConfig(cfg))
}

func (h *MonitorHandler) toggleNotifications(w http.ResponseWriter, r *http.Request, enabled bool) {
	cfg, err := h.svc.SetNotifications(r.Context(), enabled)
	if err != nil {
		h.logger.WarnContext(r.Context(), "notifications toggle failed",
			slog.Bool("enabled", enabled),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderConfig(cfg))
}
