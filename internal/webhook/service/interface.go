// Package service implements webhook authentication and purchase field extraction.
package service

import (
	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// Verifier decides whether an inbound body is an authentic provider event.
type Verifier interface {
	// Verify authenticates the exact raw body against the signature header and parses it.
	// Returns ErrSignatureMissing / ErrSignatureInvalid on authentication failure and
	// ErrMalformedPayload when the body is not JSON.
	Verify(payload []byte, signatureHeader string) (*webhookDomain.Event, error)

	// Mode returns the trust mode this verifier enforces.
	Mode() webhookDomain.TrustMode
}
