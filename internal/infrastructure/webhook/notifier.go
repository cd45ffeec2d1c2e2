// Package webhook delivers progress notifications to outgoing webhooks.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/goalgenie/pkg/application"
)

// Event types.
const (
	EventProgressUpdated = "progress.updated"
	EventProgressReset   = "progress.reset"
	EventGoalCompleted   = "goal.completed"
)

// DefaultMaxRetries applies to endpoints that leave MaxRetries unset.
const DefaultMaxRetries = 2

// SignatureHeader carries the HMAC-SHA256 of the body when a secret is set.
const SignatureHeader = "X-Goalgenie-Signature"

// Endpoint is one webhook receiver. An empty Events list receives every event.
// MaxRetries counts retries after the first attempt; zero means
// DefaultMaxRetries and a negative value disables retries.
type Endpoint struct {
	Name       string
	URL        string
	Secret     string
	Events     []string
	MaxRetries int
	RetryDelay time.Duration
}

// Payload is the JSON body sent to webhook endpoints.
type Payload struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Notifier posts events to every subscribed endpoint in the background.
type Notifier struct {
	endpoints  []Endpoint
	client     *http.Client
	deadLetter *DeadLetterStore
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewNotifier creates a notifier. deadLetter may be nil.
func NewNotifier(endpoints []Endpoint, deadLetter *DeadLetterStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		endpoints: endpoints,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		deadLetter: deadLetter,
		logger:     logger,
	}
}

// NotifyProgress translates a completion change into events. Checking the
// last open item also emits goal.completed.
func (n *Notifier) NotifyProgress(u application.ProgressUpdate) {
	if u.Reset {
		n.Notify(EventProgressReset, u)
		return
	}
	n.Notify(EventProgressUpdated, u)
	if u.Checked && u.Progress.AllDone() {
		n.Notify(EventGoalCompleted, u)
	}
}

// Notify sends one event to all matching endpoints without blocking.
func (n *Notifier) Notify(eventType string, data any) {
	body, err := json.Marshal(Payload{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		n.logger.Error("encode webhook payload", "event", eventType, "error", err)
		return
	}

	for _, ep := range n.endpoints {
		if len(ep.Events) > 0 && !slices.Contains(ep.Events, eventType) {
			continue
		}
		n.wg.Add(1)
		go func(ep Endpoint) {
			defer n.wg.Done()
			n.deliver(ep, eventType, body)
		}(ep)
	}
}

// Wait blocks until every pending delivery succeeded or was dead-lettered.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliver(ep Endpoint, eventType string, body []byte) {
	maxRetries := ep.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	attempts := max(maxRetries, 0) + 1
	retryDelay := ep.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	r := retry.New[int](retry.Config{
		MaxAttempts:   attempts,
		InitialDelay:  retryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	_, err := r.Do(context.Background(), func(ctx context.Context) (int, error) {
		return n.send(ctx, ep, body)
	})
	if err == nil {
		n.logger.Debug("webhook delivered", "webhook", ep.Name, "event", eventType)
		return
	}

	n.logger.Warn("webhook delivery failed", "webhook", ep.Name, "event", eventType, "error", err)
	if n.deadLetter == nil {
		return
	}
	dl := DeadLetter{
		Timestamp:   time.Now().UTC(),
		WebhookName: ep.Name,
		URL:         ep.URL,
		EventType:   eventType,
		Payload:     string(body),
		Error:       err.Error(),
		Attempts:    attempts,
	}
	if err := n.deadLetter.Append(dl); err != nil {
		n.logger.Error("write dead letter", "webhook", ep.Name, "error", err)
	}
}

func (n *Notifier) send(ctx context.Context, ep Endpoint, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Goalgenie-Webhook/1.0")
	if ep.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(body, ep.Secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// Sign computes the signature header value for payload: "sha256=" followed by
// the hex HMAC-SHA256 under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
