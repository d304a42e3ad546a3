package handler

import (
	"context"
	"log/slog"
	"net/http"

	"flasharb/internal/domain"
)

// ConfigService defines the runtime-configuration operations the handler
// requires.
type ConfigService interface {
	GetConfig() domain.BotConfig
	UpdatePairs(ctx context.Context, raw []string) (domain.BotConfig, error)
	UpdateThreshold(ctx context.Context, thresholdPct float64) (domain.BotConfig, error)
	UpdateMaxLoan(ctx context.Context, maxLoan float64) (domain.BotConfig, error)
	SetMonitoring(ctx context.Context, enabled bool) (domain.BotConfig, error)
	SetNotifications(ctx context.Context, enabled bool) (domain.BotConfig, error)
}

// ConfigHandler serves the runtime-configuration endpoints.
type ConfigHandler struct {
	svc    ConfigService
	logger *slog.Logger
}

// NewConfigHandler creates a ConfigHandler.
func NewConfigHandler(svc ConfigService, logger *slog.Logger) *ConfigHandler {
	return &ConfigHandler{svc: svc, logger: logger}
}

// configResponse renders a BotConfig with pairs as "BASE/QUOTE" strings.
type configResponse struct {
	Pairs                []string `json:"pairs"`
	ProfitThresholdPct   float64  `json:"profit_threshold_pct"`
	MaxLoanAmount        float64  `json:"max_loan_amount"`
	MonitoringEnabled    bool     `json:"monitoring_enabled"`
	NotificationsEnabled bool     `json:"notifications_enabled"`
	UpdatedAt            string   `json:"updated_at,omitempty"`
}

func renderConfig(cfg domain.BotConfig) configResponse {
	pairs := make([]string, len(cfg.Pairs))
	for i, p := range cfg.Pairs {
		pairs[i] = p.String()
	}
	out := configResponse{
		Pairs:                pairs,
		ProfitThresholdPct:   cfg.ProfitThresholdPct,
		MaxLoanAmount:        cfg.MaxLoanAmount,
		MonitoringEnabled:    cfg.MonitoringEnabled,
		NotificationsEnabled: cfg.NotificationsEnabled,
	}
	if !cfg.UpdatedAt.IsZero() {
		out.UpdatedAt = cfg.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

// GetConfig returns the current runtime configuration.
// GET /api/config
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, renderConfig(h.svc.GetConfig()))
}

// UpdatePairs replaces the monitored pair list.
// PUT /api/config/pairs {"pairs":["WETH/USDC","WMATIC/USDT"]}
func (h *ConfigHandler) UpdatePairs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pairs []string `json:"pairs"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.svc.UpdatePairs(r.Context(), req.Pairs)
	if err != nil {
		h.logError(r, "update pairs", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderConfig(cfg))
}

// UpdateThreshold sets the detection threshold in percent.
// PUT /api/config/threshold {"profit_threshold_pct":1.5}
func (h *ConfigHandler) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfitThresholdPct float64 `json:"profit_threshold_pct"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.svc.UpdateThreshold(r.Context(), req.ProfitThresholdPct)
	if err != nil {
		h.logError(r, "update threshold", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderConfig(cfg))
}

// UpdateMaxLoan sets the flash-loan sizing cap.
// PUT /api/config/maxloan {"max_loan_amount":5000}
func (h *ConfigHandler) UpdateMaxLoan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxLoanAmount float64 `json:"max_loan_amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.svc.UpdateMaxLoan(r.Context(), req.MaxLoanAmount)
	if err != nil {
		h.logError(r, "update max loan", err)
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderConfig(cfg))
}

func (h *ConfigHandler) logError(r *http.Request, op string, err error) {
	h.logger.WarnContext(r.Context(), "config update rejected",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}
