// Package usecase orchestrates the webhook relay: verify the inbound event, extract and
// validate the purchase, and make exactly one delivery attempt to the gateway.
package usecase

import (
	"context"

	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// GatewayClient delivers an outbound message to the downstream gateway.
type GatewayClient interface {
	SendMessage(ctx context.Context, msg webhookDomain.OutboundMessage) error
}

// RelayUseCase defines the webhook relay business logic.
type RelayUseCase interface {
	// Relay authenticates and processes one inbound webhook body.
	//
	// Returns an error only for rejected (authentication, malformed body) and invalid
	// (missing required fields) requests. Gateway delivery failures are reported inside
	// the result with Forwarded=false so the provider does not retry the event.
	Relay(ctx context.Context, payload []byte, signatureHeader string) (*webhookDomain.RelayResult, error)

	// Forward delivers a previously extracted record, typically the retry data of a failed
	// relay. Unlike Relay, a delivery failure is returned as an error.
	Forward(ctx context.Context, record webhookDomain.PurchaseRecord) (*webhookDomain.RelayResult, error)
}
