package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SlackSender delivers notifications via a Slack incoming webhook, rendering
// the severity as the attachment color.
type SlackSender struct {
	webhookURL string
	client     *http.Client
}

// NewSlackSender creates a SlackSender for the given webhook URL. It uses a
// default HTTP client with a 10-second timeout.
func NewSlackSender(webhookURL string) *SlackSender {
	return &SlackSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type slackAttachment struct {
	Color string `json:"color"`
	Title string `json:"title"`
	Text  string `json:"text"`
	TS    int64  `json:"ts"`
}

type slackPayload struct {
	Attachments []slackAttachment `json:"attachments"`
}

// severityColor maps a severity onto Slack's attachment color names.
func severityColor(s Severity) string {
	switch s {
	case SeveritySuccess:
		return "good"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "danger"
	default:
		return "#439FE0"
	}
}

// Send posts an attachment to the Slack webhook.
func (s *SlackSender) Send(ctx context.Context, severity Severity, title, message string) error {
	payload := slackPayload{
		Attachments: []slackAttachment{{
			Color: severityColor(severity),
			Title: title,
			Text:  message,
			TS:    time.Now().Unix(),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("slack: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("slack: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Name returns the sender identifier.
func (s *SlackSender) Name() string {
	return "slack"
}
