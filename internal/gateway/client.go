// Package gateway provides the HTTP client for the downstream automation gateway.
//
// The gateway receives one instruction message per accepted purchase and runs the
// report-generation workflow. This package only delivers the message; it never retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// messagePath is the gateway endpoint that accepts instruction messages.
const messagePath = "/api/message"

// maxErrorBodyBytes caps how much of a failed response body is copied into the error.
const maxErrorBodyBytes = 4096

// Client delivers outbound messages to the gateway with bearer authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a gateway client. timeout bounds the whole exchange, including
// reading the response body.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// BaseURL returns the configured gateway base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage posts msg to {baseURL}/api/message.
// Any transport error or non-2xx status is returned wrapped in ErrGatewayDelivery;
// a non-2xx status is reported as *GatewayStatusError.
func (c *Client) SendMessage(ctx context.Context, msg webhookDomain.OutboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: failed to encode message: %v", webhookDomain.ErrGatewayDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", webhookDomain.ErrGatewayDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", webhookDomain.ErrGatewayDelivery, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &webhookDomain.GatewayStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
	return nil
}
