package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flasharb/internal/domain"
	"flasharb/internal/server/handler"
	"flasharb/internal/service"
)

type memConfigStore struct {
	cfg *domain.BotConfig
}

func (m *memConfigStore) Load(ctx context.Context) (domain.BotConfig, error) {
	if m.cfg == nil {
		return domain.BotConfig{}, domain.ErrNotFound
	}
	return m.cfg.Clone(), nil
}

func (m *memConfigStore) Save(ctx context.Context, cfg domain.BotConfig) error {
	c := cfg.Clone()
	m.cfg = &c
	return nil
}

type noopLocks struct{}

func (noopLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	return func() {}, nil
}

type memOppStore struct {
	domain.OpportunityStore
	recent  []domain.FlashloanOpportunity
	metrics domain.ExecutionMetrics
}

func (m *memOppStore) ListRecent(ctx context.Context, limit int) ([]domain.FlashloanOpportunity, error) {
	if limit < len(m.recent) {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func (m *memOppStore) Metrics(ctx context.Context) (domain.ExecutionMetrics, error) {
	return m.metrics, nil
}

func newTestServer(t *testing.T, apiKey string) (*Server, *service.ConfigService) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	seed := domain.BotConfig{
		Pairs:                []domain.TradingPair{{Base: "WETH", Quote: "USDC"}},
		ProfitThresholdPct:   1.0,
		MaxLoanAmount:        1000,
		MonitoringEnabled:    true,
		NotificationsEnabled: true,
	}
	svc := service.NewConfigService(&memConfigStore{}, noopLocks{}, seed, logger)
	require.NoError(t, svc.Init(context.Background()))

	oppStore := &memOppStore{
		metrics: domain.ExecutionMetrics{TotalDetected: 3, TotalExecuted: 1, TotalNetProfit: 12.5},
	}

	srv := NewServer(
		Config{Port: 0, APIKey: apiKey},
		Handlers{
			Health:        handler.NewHealthHandler(nil, "polygon", logger),
			Config:        handler.NewConfigHandler(svc, logger),
			Monitor:       handler.NewMonitorHandler(svc, logger),
			Opportunities: handler.NewOpportunityHandler(oppStore, logger),
		},
		nil, nil, logger,
	)
	return srv, svc
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := do(t, srv.Handler(), http.MethodGet, "/api/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"network":"polygon"`)
}

func TestGetConfig(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := do(t, srv.Handler(), http.MethodGet, "/api/config", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pairs":["WETH/USDC"]`)
	assert.Contains(t, rec.Body.String(), `"profit_threshold_pct":1`)
}

func TestUpdateThreshold(t *testing.T) {
	srv, svc := newTestServer(t, "")

	rec := do(t, srv.Handler(), http.MethodPut, "/api/config/threshold",
		`{"profit_threshold_pct":2.5}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.5, svc.GetConfig().ProfitThresholdPct)
}

func TestUpdateThreshold_InvalidIs400(t *testing.T) {
	srv, svc := newTestServer(t, "")

	rec := do(t, srv.Handler(), http.MethodPut, "/api/config/threshold",
		`{"profit_threshold_pct":-1}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, svc.GetConfig().ProfitThresholdPct)
}

func TestUpdatePairs_MalformedBodyIs400(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := do(t, srv.Handler(), http.MethodPut, "/api/config/pairs", `{"pairs":`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMonitorToggles(t *testing.T) {
	srv, svc := newTestServer(t, "")

	rec := do(t, srv.Handler(), http.MethodPost, "/api/monitor/stop", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.GetConfig().MonitoringEnabled)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/monitor/start", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.GetConfig().MonitoringEnabled)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/notifications/stop", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.GetConfig().NotificationsEnabled)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := do(t, srv.Handler(), http.MethodGet, "/api/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_detected":3`)
	assert.Contains(t, rec.Body.String(), `"total_executed":1`)
}

func TestAuth_RejectsMissingKey(t *testing.T) {
	srv, _ := newTestServer(t, "secret")

	rec := do(t, srv.Handler(), http.MethodGet, "/api/config", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/config", "",
		map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_AcceptsBearerAndHeader(t *testing.T) {
	srv, _ := newTestServer(t, "secret")

	rec := do(t, srv.Handler(), http.MethodGet, "/api/config", "",
		map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/config", "",
		map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListRecentOpportunities(t *testing.T) {
	srv, _ := newTestServer(t, "")

	rec := do(t, srv.Handler(), http.MethodGet, "/api/opportunities/recent?limit=5", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"opportunities":[]`)
}
