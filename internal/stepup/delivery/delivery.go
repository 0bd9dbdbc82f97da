// Package delivery dispatches one-time codes to out-of-band channels. The
// production sender hands the code to an SMS gateway over a webhook; the log
// sender stands in for local development.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/eventia/stepup/internal/stepup/domain"
	"github.com/eventia/stepup/pkg/slogx"
)

// DefaultTimeout bounds a single delivery round-trip.
const DefaultTimeout = 30 * time.Second

// Sender delivers a plaintext one-time code to a destination. Implementations
// must not persist or log the code.
type Sender interface {
	Send(ctx context.Context, destination, code string) error
}

// WebhookSender POSTs the code to an SMS gateway endpoint.
type WebhookSender struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		URL:     url,
		Client:  &http.Client{},
		Timeout: DefaultTimeout,
	}
}

type webhookPayload struct {
	Destination string `json:"destination"`
	Message     string `json:"message"`
}

func (s *WebhookSender) Send(ctx context.Context, destination, code string) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(webhookPayload{
		Destination: destination,
		Message:     fmt.Sprintf("Your verification code is %s", code),
	})
	if err != nil {
		return fmt.Errorf("%w: encode payload: %w", domain.ErrDeliveryFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrDeliveryFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: gateway did not respond within %s", domain.ErrTimeout, timeout)
		}
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailure, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: gateway returned %d", domain.ErrDeliveryFailure, resp.StatusCode)
	}
	return nil
}

// LogSender records that a delivery happened without exposing the code. It is
// the default when no gateway is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, destination, code string) error {
	slogx.FromContext(ctx).Info("one-time code dispatched",
		slog.String("destination", maskDestination(destination)),
		slog.Int("code_length", len(code)),
	)
	return nil
}

// maskDestination keeps the last two characters so operators can correlate
// deliveries without the full phone number landing in logs.
func maskDestination(destination string) string {
	if len(destination) <= 2 {
		return "***"
	}
	return "***" + destination[len(destination)-2:]
}

// CaptureSender records sends for assertions in tests.
type CaptureSender struct {
	mu    sync.Mutex
	Err   error
	sends []CapturedSend
}

type CapturedSend struct {
	Destination string
	Code        string
}

func (s *CaptureSender) Send(ctx context.Context, destination, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	s.sends = append(s.sends, CapturedSend{Destination: destination, Code: code})
	return nil
}

func (s *CaptureSender) Sends() []CapturedSend {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CapturedSend, len(s.sends))
	copy(out, s.sends)
	return out
}
