// Package sms defines the outbound notification contract. Delivery is fire
// and forget from the registration service's perspective: a failed SMS never
// rolls back or blocks a completed registration.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Notifier sends a short text message to a phone number.
type Notifier interface {
	Notify(ctx context.Context, phone, message string) error
}

// Gateway posts messages to an HTTP SMS gateway.
type Gateway struct {
	url    string
	client *http.Client
}

func NewGateway(url string) *Gateway {
	return &Gateway{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *Gateway) Notify(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(map[string]string{
		"to":      phone,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier writes messages to the log instead of a gateway. Development
// default when no gateway URL is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, phone, message string) error {
	n.logger.InfoContext(ctx, "sms notification", "to", phone, "message", message)
	return nil
}

// Recorder collects messages for tests.
type Recorder struct {
	mu       sync.Mutex
	messages []RecordedMessage
}

type RecordedMessage struct {
	Phone   string
	Message string
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Notify(ctx context.Context, phone, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, RecordedMessage{Phone: phone, Message: message})
	return nil
}

func (r *Recorder) Messages() []RecordedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedMessage, len(r.messages))
	copy(out, r.messages)
	return out
}
