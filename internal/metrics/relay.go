package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Operation names the entry point that produced a relay outcome.
type Operation string

const (
	// OperationEventRelay is an inbound provider webhook.
	OperationEventRelay Operation = "event_relay"
	// OperationManualForward is an operator replay of retry data.
	OperationManualForward Operation = "manual_forward"
)

// RejectionReason classifies a request refused before any forwarding attempt.
type RejectionReason string

const (
	RejectionMissingSignature RejectionReason = "missing_signature"
	RejectionInvalidSignature RejectionReason = "invalid_signature"
	RejectionMalformedPayload RejectionReason = "malformed_payload"
	RejectionMissingFields    RejectionReason = "missing_fields"
	RejectionOther            RejectionReason = "other"
)

// Delivery describes one attempt to hand a message to the gateway.
// StatusCode is zero when no response was received.
type Delivery struct {
	Delivered  bool
	StatusCode int
	Duration   time.Duration
}

// RelayMetrics records what the relay did with each request.
type RelayMetrics interface {
	// RecordOutcome counts a finished request by its terminal outcome and records its latency.
	RecordOutcome(ctx context.Context, operation Operation, outcome string, duration time.Duration)

	// RecordRejection counts a request refused before forwarding.
	RecordRejection(ctx context.Context, operation Operation, reason RejectionReason)

	// RecordDelivery counts a gateway attempt and records its latency.
	RecordDelivery(ctx context.Context, delivery Delivery)
}

type relayMetrics struct {
	outcomes         metric.Int64Counter
	outcomeDuration  metric.Float64Histogram
	rejections       metric.Int64Counter
	deliveries       metric.Int64Counter
	deliveryDuration metric.Float64Histogram
}

// Gateway calls are bounded by a 30s default timeout, so buckets reach past it.
var deliveryBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60}

// NewRelayMetrics creates the relay instruments on meterProvider.
func NewRelayMetrics(meterProvider metric.MeterProvider, namespace string) (RelayMetrics, error) {
	meter := meterProvider.Meter(instrumentationScope)

	outcomes, err := meter.Int64Counter(
		name(namespace, "webhook_outcomes_total"),
		metric.WithDescription("Relay requests by terminal outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outcome counter: %w", err)
	}

	outcomeDuration, err := meter.Float64Histogram(
		name(namespace, "webhook_duration_seconds"),
		metric.WithDescription("Time to reach a terminal outcome, gateway call included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(deliveryBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outcome histogram: %w", err)
	}

	rejections, err := meter.Int64Counter(
		name(namespace, "webhook_rejections_total"),
		metric.WithDescription("Requests refused before forwarding, by reason"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rejection counter: %w", err)
	}

	deliveries, err := meter.Int64Counter(
		name(namespace, "gateway_deliveries_total"),
		metric.WithDescription("Gateway delivery attempts by result and response status class"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery counter: %w", err)
	}

	deliveryDuration, err := meter.Float64Histogram(
		name(namespace, "gateway_delivery_duration_seconds"),
		metric.WithDescription("Gateway delivery latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(deliveryBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery histogram: %w", err)
	}

	return &relayMetrics{
		outcomes:         outcomes,
		outcomeDuration:  outcomeDuration,
		rejections:       rejections,
		deliveries:       deliveries,
		deliveryDuration: deliveryDuration,
	}, nil
}

func (r *relayMetrics) RecordOutcome(ctx context.Context, operation Operation, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", string(operation)),
		attribute.String("outcome", outcome),
	)
	r.outcomes.Add(ctx, 1, attrs)
	r.outcomeDuration.Record(ctx, duration.Seconds(), attrs)
}

func (r *relayMetrics) RecordRejection(ctx context.Context, operation Operation, reason RejectionReason) {
	r.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", string(operation)),
		attribute.String("reason", string(reason)),
	))
}

func (r *relayMetrics) RecordDelivery(ctx context.Context, delivery Delivery) {
	result := "failed"
	if delivery.Delivered {
		result = "delivered"
	}

	r.deliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.String("status_class", StatusClass(delivery.StatusCode)),
	))
	r.deliveryDuration.Record(ctx, delivery.Duration.Seconds(), metric.WithAttributes(
		attribute.String("result", result),
	))
}

// StatusClass collapses an HTTP status code to "2xx".."5xx", or "none" when there was no response.
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "none"
	}
	return strconv.Itoa(code/100) + "xx"
}

// NoOpRelayMetrics discards everything. Used when metrics are disabled.
type NoOpRelayMetrics struct{}

// NewNoOpRelayMetrics creates a RelayMetrics that records nothing.
func NewNoOpRelayMetrics() RelayMetrics {
	return &NoOpRelayMetrics{}
}

func (n *NoOpRelayMetrics) RecordOutcome(context.Context, Operation, string, time.Duration) {}

func (n *NoOpRelayMetrics) RecordRejection(context.Context, Operation, RejectionReason) {}

func (n *NoOpRelayMetrics) RecordDelivery(context.Context, Delivery) {}
