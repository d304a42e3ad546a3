package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flasharb/internal/domain"
)

type recordingSender struct {
	name     string
	err      error
	titles   []string
	sevs     []Severity
	messages []string
}

func (r *recordingSender) Send(ctx context.Context, severity Severity, title, message string) error {
	if r.err != nil {
		return r.err
	}
	r.sevs = append(r.sevs, severity)
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingSender) Name() string { return r.name }

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestNotifier_EventFilter(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, []string{EventExecution}, discard())

	require.NoError(t, n.Notify(context.Background(), EventOpportunity, SeverityInfo, "dropped", ""))
	require.NoError(t, n.Notify(context.Background(), EventExecution, SeveritySuccess, "kept", ""))

	assert.Equal(t, []string{"kept"}, s.titles)
}

func TestNotifier_EmptyFilterAllowsAll(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, nil, discard())

	require.NoError(t, n.Notify(context.Background(), EventStartup, SeverityInfo, "a", ""))
	require.NoError(t, n.Notify(context.Background(), EventError, SeverityWarning, "b", ""))

	assert.Len(t, s.titles, 2)
}

func TestNotifier_OneSenderFailingDoesNotBlockOthers(t *testing.T) {
	bad := &recordingSender{name: "bad", err: errors.New("webhook 500")}
	good := &recordingSender{name: "good"}
	n := NewNotifier([]Sender{bad, good}, nil, discard())

	err := n.Notify(context.Background(), EventExecution, SeverityError, "title", "body")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, []string{"title"}, good.titles)
}

func TestNotifier_DomainAlerts(t *testing.T) {
	s := &recordingSender{name: "test"}
	n := NewNotifier([]Sender{s}, nil, discard())

	fl := domain.FlashloanOpportunity{
		Opportunity: domain.Opportunity{
			Pair:         domain.TradingPair{Base: "WETH", Quote: "USDC"},
			BuyExchange:  "quickswap",
			SellExchange: "sushiswap",
			BuyPrice:     2000,
			SellPrice:    2040,
			ProfitPct:    2.0,
			DetectedAt:   time.Now().UTC(),
		},
		LoanAmount: 1000,
		NetProfit:  19.05,
		TxHash:     "0xabc",
	}

	n.OpportunityFound(context.Background(), fl)
	n.ExecutionSubmitted(context.Background(), fl)
	n.ExecutionFailed(context.Background(), fl, errors.New("nonce too low"))
	n.Startup(context.Background(), "polygon", true)

	require.Len(t, s.titles, 4)
	assert.Equal(t,
		[]Severity{SeverityInfo, SeveritySuccess, SeverityError, SeverityInfo}, s.sevs)
	assert.Contains(t, s.messages[0], "WETH/USDC")
	assert.Contains(t, s.messages[1], "0xabc")
	assert.Contains(t, s.messages[2], "nonce too low")
	assert.Contains(t, s.messages[3], "dry run")
}

func TestSlackSender_PayloadAndColor(t *testing.T) {
	var got slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlackSender(srv.URL)
	require.NoError(t, s.Send(context.Background(), SeverityError, "Execution failed", "details"))

	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "danger", got.Attachments[0].Color)
	assert.Equal(t, "Execution failed", got.Attachments[0].Title)
	assert.Equal(t, "details", got.Attachments[0].Text)
}

func TestSlackSender_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewSlackSender(srv.URL)
	err := s.Send(context.Background(), SeverityInfo, "t", "m")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSeverityMappings(t *testing.T) {
	assert.Equal(t, "good", severityColor(SeveritySuccess))
	assert.Equal(t, "warning", severityColor(SeverityWarning))
	assert.Equal(t, "danger", severityColor(SeverityError))
	assert.Equal(t, "#439FE0", severityColor(SeverityInfo))

	assert.Equal(t, "[OK]", severityTag(SeveritySuccess))
	assert.Equal(t, "[INFO]", severityTag(SeverityInfo))
}
