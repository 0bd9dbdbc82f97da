package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventia/stepup/internal/stepup/domain"
)

func TestWebhookSender(t *testing.T) {
	t.Parallel()

	t.Run("PostsDestinationAndMessage", func(t *testing.T) {
		t.Parallel()

		var got webhookPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		sender := NewWebhookSender(srv.URL)
		require.NoError(t, sender.Send(context.Background(), "+15551234567", "123456"))
		require.Equal(t, "+15551234567", got.Destination)
		require.Contains(t, got.Message, "123456")
	})

	t.Run("GatewayErrorIsDeliveryFailure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		sender := NewWebhookSender(srv.URL)
		err := sender.Send(context.Background(), "+15551234567", "123456")
		require.ErrorIs(t, err, domain.ErrDeliveryFailure)
	})

	t.Run("SlowGatewayIsTimeout", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		sender := NewWebhookSender(srv.URL)
		sender.Timeout = 50 * time.Millisecond

		err := sender.Send(context.Background(), "+15551234567", "123456")
		require.ErrorIs(t, err, domain.ErrTimeout)
	})

	t.Run("UnreachableGatewayIsDeliveryFailure", func(t *testing.T) {
		t.Parallel()

		sender := NewWebhookSender("http://127.0.0.1:1")
		err := sender.Send(context.Background(), "+15551234567", "123456")
		require.ErrorIs(t, err, domain.ErrDeliveryFailure)
	})
}

func TestMaskDestination(t *testing.T) {
	t.Parallel()

	require.Equal(t, "***67", maskDestination("+15551234567"))
	require.Equal(t, "***", maskDestination("ab"))
}

func TestCaptureSender(t *testing.T) {
	t.Parallel()

	var sender CaptureSender
	require.NoError(t, sender.Send(context.Background(), "+15551234567", "123456"))

	sends := sender.Sends()
	require.Len(t, sends, 1)
	require.Equal(t, "123456", sends[0].Code)
}
