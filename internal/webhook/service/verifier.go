package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81/webhook"

	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// NewVerifier selects the verifier for the configured trust mode.
// An empty secret yields the unauthenticated parser; the choice is made once at startup.
func NewVerifier(secret string, tolerance time.Duration, logger *slog.Logger) Verifier {
	if secret == "" {
		return NewUnverifiedParser(logger)
	}
	return NewSignatureVerifier(secret, tolerance)
}

type signatureVerifier struct {
	secret    string
	tolerance time.Duration
}

// NewSignatureVerifier creates a verifier that checks the provider's HMAC-SHA256 signature
// scheme (timestamped "t=...,v1=..." header) over the raw body.
func NewSignatureVerifier(secret string, tolerance time.Duration) Verifier {
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &signatureVerifier{
		secret:    secret,
		tolerance: tolerance,
	}
}

// Verify checks the signature before the body is parsed at all.
func (v *signatureVerifier) Verify(payload []byte, signatureHeader string) (*webhookDomain.Event, error) {
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, webhookDomain.ErrSignatureMissing
	}

	if err := webhook.ValidatePayloadWithTolerance(payload, signatureHeader, v.secret, v.tolerance); err != nil {
		return nil, fmt.Errorf("%w: %v", webhookDomain.ErrSignatureInvalid, err)
	}

	return parseEvent(payload)
}

// Mode returns TrustModeAuthenticated.
func (v *signatureVerifier) Mode() webhookDomain.TrustMode {
	return webhookDomain.TrustModeAuthenticated
}

type unverifiedParser struct {
	logger *slog.Logger
}

// NewUnverifiedParser creates a verifier that accepts any JSON body without an authenticity
// check. Intended for local development only.
func NewUnverifiedParser(logger *slog.Logger) Verifier {
	return &unverifiedParser{logger: logger}
}

// Verify parses the body and logs the reduced trust level.
func (p *unverifiedParser) Verify(payload []byte, signatureHeader string) (*webhookDomain.Event, error) {
	event, err := parseEvent(payload)
	if err != nil {
		return nil, err
	}

	p.logger.Warn("webhook accepted without signature verification",
		slog.String("trust_mode", p.Mode().String()),
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
		slog.Bool("signature_present", signatureHeader != ""),
	)

	return event, nil
}

// Mode returns TrustModeUnauthenticated.
func (p *unverifiedParser) Mode() webhookDomain.TrustMode {
	return webhookDomain.TrustModeUnauthenticated
}
