package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/webhook-relay/internal/errors"
	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// testRequest holds what the fake gateway received.
type testRequest struct {
	Method  string
	Path    string
	Body    []byte
	Headers http.Header
}

func testMessage() webhookDomain.OutboundMessage {
	return webhookDomain.OutboundMessage{Channel: "main", Message: "hello agent"}
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://gateway.local/", "tok", 7*time.Second)
	assert.Equal(t, "http://gateway.local", client.BaseURL())
	assert.Equal(t, 7*time.Second, client.httpClient.Timeout)
}

func TestClient_SendMessage(t *testing.T) {
	t.Run("Success_PostsAuthenticatedJSON", func(t *testing.T) {
		var received testRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.Method = r.Method
			received.Path = r.URL.Path
			received.Body, _ = io.ReadAll(r.Body)
			received.Headers = r.Header.Clone()
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer ts.Close()

		client := NewClient(ts.URL, "secret-token", 5*time.Second)
		err := client.SendMessage(context.Background(), testMessage())
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, received.Method)
		assert.Equal(t, "/api/message", received.Path)
		assert.Equal(t, "application/json", received.Headers.Get("Content-Type"))
		assert.Equal(t, "Bearer secret-token", received.Headers.Get("Authorization"))

		var sent map[string]string
		require.NoError(t, json.Unmarshal(received.Body, &sent))
		assert.Equal(t, map[string]string{"channel": "main", "message": "hello agent"}, sent)
	})

	t.Run("Error_NonSuccessStatusCapturesBody", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("agent session offline\n"))
		}))
		defer ts.Close()

		client := NewClient(ts.URL, "tok", 5*time.Second)
		err := client.SendMessage(context.Background(), testMessage())
		require.Error(t, err)

		assert.ErrorIs(t, err, webhookDomain.ErrGatewayDelivery)
		assert.True(t, apperrors.Is(err, apperrors.ErrUpstream))
		assert.Contains(t, err.Error(), "status=502")
		assert.Contains(t, err.Error(), "agent session offline")

		var statusErr *webhookDomain.GatewayStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		assert.Equal(t, "agent session offline", statusErr.Body)
	})

	t.Run("Error_LargeBodyTruncated", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(strings.Repeat("x", 10*maxErrorBodyBytes)))
		}))
		defer ts.Close()

		client := NewClient(ts.URL, "tok", 5*time.Second)
		err := client.SendMessage(context.Background(), testMessage())
		require.Error(t, err)
		assert.Less(t, len(err.Error()), 2*maxErrorBodyBytes)
	})

	t.Run("Error_Unreachable", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "tok", 2*time.Second)
		err := client.SendMessage(context.Background(), testMessage())
		assert.ErrorIs(t, err, webhookDomain.ErrGatewayDelivery)

		var statusErr *webhookDomain.GatewayStatusError
		assert.False(t, apperrors.As(err, &statusErr))
	})

	t.Run("Error_TimeoutBounded", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer ts.Close()
		defer close(release)

		client := NewClient(ts.URL, "tok", 100*time.Millisecond)
		start := time.Now()
		err := client.SendMessage(context.Background(), testMessage())

		assert.ErrorIs(t, err, webhookDomain.ErrGatewayDelivery)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("Error_CanceledContext", func(t *testing.T) {
		var calls atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
		}))
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClient(ts.URL, "tok", 5*time.Second)
		err := client.SendMessage(ctx, testMessage())
		assert.ErrorIs(t, err, webhookDomain.ErrGatewayDelivery)
		assert.Equal(t, int32(0), calls.Load())
	})
}
