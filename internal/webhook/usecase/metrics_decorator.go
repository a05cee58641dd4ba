package usecase

import (
	"context"
	"time"

	apperrors "github.com/allisson/webhook-relay/internal/errors"
	"github.com/allisson/webhook-relay/internal/metrics"
	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// outcomeError labels calls that ended in an unclassified error.
const outcomeError = "error"

// relayUseCaseWithMetrics decorates RelayUseCase with metrics instrumentation.
type relayUseCaseWithMetrics struct {
	next    RelayUseCase
	metrics metrics.RelayMetrics
}

// NewRelayUseCaseWithMetrics wraps a RelayUseCase with metrics recording.
// Every call is counted under its terminal outcome (forwarded, forward_failed, filtered_out,
// rejected, invalid). Requests refused before forwarding are also counted by reason.
func NewRelayUseCaseWithMetrics(useCase RelayUseCase, m metrics.RelayMetrics) RelayUseCase {
	return &relayUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Relay records metrics for inbound webhook processing.
func (r *relayUseCaseWithMetrics) Relay(
	ctx context.Context,
	payload []byte,
	signatureHeader string,
) (*webhookDomain.RelayResult, error) {
	start := time.Now()
	result, err := r.next.Relay(ctx, payload, signatureHeader)
	r.record(ctx, metrics.OperationEventRelay, result, err, time.Since(start))
	return result, err
}

// Forward records metrics for manual forwarding.
func (r *relayUseCaseWithMetrics) Forward(
	ctx context.Context,
	record webhookDomain.PurchaseRecord,
) (*webhookDomain.RelayResult, error) {
	start := time.Now()
	result, err := r.next.Forward(ctx, record)
	r.record(ctx, metrics.OperationManualForward, result, err, time.Since(start))
	return result, err
}

func (r *relayUseCaseWithMetrics) record(
	ctx context.Context,
	operation metrics.Operation,
	result *webhookDomain.RelayResult,
	err error,
	duration time.Duration,
) {
	r.metrics.RecordOutcome(ctx, operation, outcomeStatus(result, err), duration)
	if result == nil {
		if reason, ok := rejectionReason(err); ok {
			r.metrics.RecordRejection(ctx, operation, reason)
		}
	}
}

// outcomeStatus maps a use case return pair to an outcome label.
func outcomeStatus(result *webhookDomain.RelayResult, err error) string {
	if result != nil {
		return string(result.Outcome)
	}

	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized), apperrors.Is(err, apperrors.ErrBadRequest):
		return string(webhookDomain.OutcomeRejected)
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return string(webhookDomain.OutcomeInvalid)
	default:
		return outcomeError
	}
}

// rejectionReason classifies an error that refused a request before forwarding.
// ok is false for errors that are not rejections.
func rejectionReason(err error) (metrics.RejectionReason, bool) {
	var missing *webhookDomain.MissingFieldsError

	switch {
	case err == nil:
		return "", false
	case apperrors.Is(err, webhookDomain.ErrSignatureMissing):
		return metrics.RejectionMissingSignature, true
	case apperrors.Is(err, webhookDomain.ErrSignatureInvalid):
		return metrics.RejectionInvalidSignature, true
	case apperrors.Is(err, webhookDomain.ErrMalformedPayload):
		return metrics.RejectionMalformedPayload, true
	case apperrors.As(err, &missing):
		return metrics.RejectionMissingFields, true
	case apperrors.Is(err, apperrors.ErrUnauthorized),
		apperrors.Is(err, apperrors.ErrBadRequest),
		apperrors.Is(err, apperrors.ErrInvalidInput):
		return metrics.RejectionOther, true
	default:
		return "", false
	}
}

// gatewayClientWithMetrics times and classifies every gateway delivery attempt.
type gatewayClientWithMetrics struct {
	next    GatewayClient
	metrics metrics.RelayMetrics
}

// NewGatewayClientWithMetrics wraps a GatewayClient with delivery metrics.
func NewGatewayClientWithMetrics(client GatewayClient, m metrics.RelayMetrics) GatewayClient {
	return &gatewayClientWithMetrics{
		next:    client,
		metrics: m,
	}
}

// SendMessage records the attempt's result, response status class and latency.
func (g *gatewayClientWithMetrics) SendMessage(ctx context.Context, msg webhookDomain.OutboundMessage) error {
	start := time.Now()
	err := g.next.SendMessage(ctx, msg)

	delivery := metrics.Delivery{
		Delivered: err == nil,
		Duration:  time.Since(start),
	}

	var statusErr *webhookDomain.GatewayStatusError
	switch {
	case err == nil:
		// The client accepts any 2xx; only the class is reported.
		delivery.StatusCode = 200
	case apperrors.As(err, &statusErr):
		delivery.StatusCode = statusErr.StatusCode
	}

	g.metrics.RecordDelivery(ctx, delivery)
	return err
}
