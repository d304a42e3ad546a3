// Package notify provides a multi-channel notification system. Alerts are
// dispatched to all registered senders (Slack, Telegram) and can be filtered
// by event type so operators receive only the alerts they care about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flasharb/internal/domain"
)

// Severity classifies an alert for channel-side rendering (Slack colors,
// Telegram prefixes).
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Event types used for operator-side filtering.
const (
	EventStartup     = "startup"
	EventOpportunity = "opportunity"
	EventExecution   = "execution"
	EventError       = "error"
)

// Sender is the interface each notification channel implements.
type Sender interface {
	// Send delivers a notification with the given severity, title, and body.
	Send(ctx context.Context, severity Severity, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "slack").
	Name() string
}

// Notifier dispatches alerts to one or more Senders. It maintains a set of
// allowed event types; alerts whose event is not in the set are dropped. An
// empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only
// events whose type appears in the events slice are forwarded; an empty
// slice allows all events.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify sends an alert to all senders if the event type passes the filter.
func (n *Notifier) Notify(ctx context.Context, event string, severity Severity, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out", slog.String("event", event))
		return nil
	}
	return n.dispatch(ctx, severity, title, message)
}

// dispatch iterates over all senders. Errors from individual senders are
// collected into a combined error; one sender failing does not prevent
// delivery to the rest.
func (n *Notifier) dispatch(ctx context.Context, severity Severity, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, severity, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

// Startup announces that the bot came up. testMode is echoed so operators
// immediately see whether executions are live.
func (n *Notifier) Startup(ctx context.Context, network string, dryRun bool) {
	mode := "live"
	if dryRun {
		mode = "dry run"
	}
	msg := fmt.Sprintf("Network: %s\nMode: %s\nStarted: %s",
		network, mode, time.Now().UTC().Format(time.RFC3339))
	_ = n.Notify(ctx, EventStartup, SeverityInfo, "Flash-loan arbitrage bot online", msg)
}

// OpportunityFound alerts on the winning opportunity of a scan cycle.
func (n *Notifier) OpportunityFound(ctx context.Context, fl domain.FlashloanOpportunity) {
	msg := fmt.Sprintf(
		"Pair: %s\nBuy: %s @ %.6f\nSell: %s @ %.6f\nSpread: %.2f%%\nLoan: %.2f\nFlash-loan fee: %.4f\nEst. gas: %.4f\nNet profit: %.4f",
		fl.Pair, fl.BuyExchange, fl.BuyPrice, fl.SellExchange, fl.SellPrice,
		fl.ProfitPct, fl.LoanAmount, fl.FlashloanFee, fl.EstGasCost, fl.NetProfit,
	)
	_ = n.Notify(ctx, EventOpportunity, SeverityInfo, "Arbitrage opportunity detected", msg)
}

// ExecutionSubmitted alerts that the arbitrage transaction went out.
func (n *Notifier) ExecutionSubmitted(ctx context.Context, fl domain.FlashloanOpportunity) {
	msg := fmt.Sprintf("Route: %s\nLoan: %.2f\nNet profit: %.4f\nTx: %s",
		fl.Route(), fl.LoanAmount, fl.NetProfit, fl.TxHash)
	_ = n.Notify(ctx, EventExecution, SeveritySuccess, "Arbitrage execution submitted", msg)
}

// ExecutionFailed alerts that the execution path errored.
func (n *Notifier) ExecutionFailed(ctx context.Context, fl domain.FlashloanOpportunity, err error) {
	msg := fmt.Sprintf("Route: %s\nLoan: %.2f\nError: %v", fl.Route(), fl.LoanAmount, err)
	_ = n.Notify(ctx, EventExecution, SeverityError, "Arbitrage execution failed", msg)
}

// MonitorError alerts on repeated scan failures.
func (n *Notifier) MonitorError(ctx context.Context, err error) {
	_ = n.Notify(ctx, EventError, SeverityWarning, "Monitor error", err.Error())
}
