// Package notify posts env change announcements to chat.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ghiac/ephdash/log"
)

// Notifier announces env changes. Implementations never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// Nop drops every message
type Nop struct{}

// Notify does nothing
func (Nop) Notify(context.Context, string) {}

// Slack posts messages to a Slack incoming webhook
type Slack struct {
	webhook string
	client  *http.Client
}

type slackMessage struct {
	Text string `json:"text"`
}

// NewSlack creates a Slack notifier. An empty webhook disables posting.
func NewSlack(webhook string) *Slack {
	return &Slack{
		webhook: webhook,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook is configured
func (s *Slack) Enabled() bool {
	return s != nil && s.webhook != ""
}

// Notify posts msg and logs, rather than returns, any failure
func (s *Slack) Notify(ctx context.Context, msg string) {
	if !s.Enabled() {
		return
	}
	if err := s.post(ctx, msg); err != nil {
		log.Log.Warnf("[Notify] slack post failed: %v", err)
	}
}

func (s *Slack) post(ctx context.Context, msg string) error {
	content, err := json.Marshal(slackMessage{Text: msg})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhook, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("bad status code: %d", resp.StatusCode)
	}
	return nil
}
