// Package domain defines the core types of the payment webhook relay: provider events,
// the purchase record extracted from them and the instruction forwarded to the gateway.
package domain

import (
	"github.com/stripe/stripe-go/v81"
)

// EventType is the provider-declared type of a webhook event.
type EventType string

// Event types that are relayed to the gateway. Every other type is acknowledged and ignored.
const (
	EventTypeCheckoutCompleted = EventType(stripe.EventTypeCheckoutSessionCompleted)
	EventTypePaymentSucceeded  = EventType(stripe.EventTypePaymentIntentSucceeded)
)

// IsRelayable reports whether events of this type proceed to extraction and forwarding.
func (t EventType) IsRelayable() bool {
	switch t {
	case EventTypeCheckoutCompleted, EventTypePaymentSucceeded:
		return true
	default:
		return false
	}
}

// Event is an authenticated (or, in unauthenticated mode, merely parsed) provider event.
// Object is the event subject, e.g. the checkout session or the payment intent.
type Event struct {
	ID     string
	Type   EventType
	Object map[string]any
}

// TrustMode describes how inbound events are authenticated. It is fixed at startup.
type TrustMode int

const (
	// TrustModeAuthenticated verifies the provider signature over the raw body.
	TrustModeAuthenticated TrustMode = iota
	// TrustModeUnauthenticated parses the body without any authenticity check.
	TrustModeUnauthenticated
)

// String returns the log/health representation of the trust mode.
func (m TrustMode) String() string {
	switch m {
	case TrustModeAuthenticated:
		return "authenticated"
	case TrustModeUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// VerifiesSignatures reports whether this mode checks provider signatures.
func (m TrustMode) VerifiesSignatures() bool {
	return m == TrustModeAuthenticated
}
