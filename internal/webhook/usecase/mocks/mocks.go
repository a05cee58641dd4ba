// Package mocks provides mock implementations of the relay use case dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/webhook-relay/internal/metrics"
	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// MockGatewayClient is a mock implementation of GatewayClient for testing.
type MockGatewayClient struct {
	mock.Mock
}

// SendMessage mocks the SendMessage method of GatewayClient.
func (m *MockGatewayClient) SendMessage(ctx context.Context, msg webhookDomain.OutboundMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockRelayUseCase is a mock implementation of RelayUseCase for testing.
type MockRelayUseCase struct {
	mock.Mock
}

// Relay mocks the Relay method of RelayUseCase.
func (m *MockRelayUseCase) Relay(
	ctx context.Context,
	payload []byte,
	signatureHeader string,
) (*webhookDomain.RelayResult, error) {
	args := m.Called(ctx, payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhookDomain.RelayResult), args.Error(1)
}

// Forward mocks the Forward method of RelayUseCase.
func (m *MockRelayUseCase) Forward(
	ctx context.Context,
	record webhookDomain.PurchaseRecord,
) (*webhookDomain.RelayResult, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhookDomain.RelayResult), args.Error(1)
}

// MockRelayMetrics is a mock implementation of metrics.RelayMetrics for testing.
type MockRelayMetrics struct {
	mock.Mock
}

// RecordOutcome mocks the RecordOutcome method of RelayMetrics.
func (m *MockRelayMetrics) RecordOutcome(
	ctx context.Context,
	operation metrics.Operation,
	outcome string,
	duration time.Duration,
) {
	m.Called(ctx, operation, outcome, duration)
}

// RecordRejection mocks the RecordRejection method of RelayMetrics.
func (m *MockRelayMetrics) RecordRejection(
	ctx context.Context,
	operation metrics.Operation,
	reason metrics.RejectionReason,
) {
	m.Called(ctx, operation, reason)
}

// RecordDelivery mocks the RecordDelivery method of RelayMetrics.
func (m *MockRelayMetrics) RecordDelivery(ctx context.Context, delivery metrics.Delivery) {
	m.Called(ctx, delivery)
}
