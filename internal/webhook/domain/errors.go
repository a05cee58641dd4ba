package domain

import (
	"fmt"
	"strings"

	"github.com/allisson/webhook-relay/internal/errors"
)

// Webhook-specific error definitions.
var (
	// ErrSignatureMissing indicates a secret is configured but the request carries no signature.
	ErrSignatureMissing = errors.Wrap(errors.ErrUnauthorized, "missing webhook signature")

	// ErrSignatureInvalid indicates the signature header is malformed, stale or does not match the body.
	ErrSignatureInvalid = errors.Wrap(errors.ErrUnauthorized, "invalid webhook signature")

	// ErrMalformedPayload indicates the body is not valid JSON.
	ErrMalformedPayload = errors.Wrap(errors.ErrBadRequest, "malformed webhook payload")

	// ErrGatewayDelivery indicates the gateway was unreachable or answered with a non-2xx status.
	ErrGatewayDelivery = errors.Wrap(errors.ErrUpstream, "gateway delivery failed")
)

// MissingFieldsError reports required purchase fields that could not be resolved.
// Record holds whatever was extracted so operators can see the misconfiguration.
type MissingFieldsError struct {
	Fields []string
	Record PurchaseRecord
}

// Error implements the error interface.
func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Unwrap allows errors.Is(err, errors.ErrInvalidInput).
func (e *MissingFieldsError) Unwrap() error {
	return errors.ErrInvalidInput
}

// GatewayStatusError is a delivery the gateway answered with a non-2xx status.
type GatewayStatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *GatewayStatusError) Error() string {
	return fmt.Sprintf("%s: status=%d, body=%s", ErrGatewayDelivery.Error(), e.StatusCode, e.Body)
}

// Unwrap allows errors.Is(err, ErrGatewayDelivery).
func (e *GatewayStatusError) Unwrap() error {
	return ErrGatewayDelivery
}
