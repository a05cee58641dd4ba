package usecase

import (
	"context"
	"log/slog"

	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
	webhookService "github.com/allisson/webhook-relay/internal/webhook/service"
)

// Config holds the message-building settings of the relay.
type Config struct {
	StorefrontURL string
	Channel       string
}

type relayUseCase struct {
	config   Config
	verifier webhookService.Verifier
	gateway  GatewayClient
	logger   *slog.Logger
}

// NewRelayUseCase creates a RelayUseCase.
func NewRelayUseCase(
	config Config,
	verifier webhookService.Verifier,
	gateway GatewayClient,
	logger *slog.Logger,
) RelayUseCase {
	return &relayUseCase{
		config:   config,
		verifier: verifier,
		gateway:  gateway,
		logger:   logger,
	}
}

// Relay implements RelayUseCase.
func (r *relayUseCase) Relay(
	ctx context.Context,
	payload []byte,
	signatureHeader string,
) (*webhookDomain.RelayResult, error) {
	event, err := r.verifier.Verify(payload, signatureHeader)
	if err != nil {
		return nil, err
	}

	if !event.Type.IsRelayable() {
		r.logger.Info("webhook event ignored",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)),
		)
		return webhookDomain.NewFilteredResult(event), nil
	}

	record := webhookService.ExtractPurchase(event.Object)
	if err := record.Validate(); err != nil {
		return nil, err
	}

	// The provider may drop the connection while we wait on the gateway. Finish the
	// attempt anyway; the client timeout still bounds it.
	msg := webhookDomain.BuildMessage(record, r.config.StorefrontURL, r.config.Channel)
	if err := r.gateway.SendMessage(context.WithoutCancel(ctx), msg); err != nil {
		r.logger.Error("failed to forward webhook event to gateway",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)),
			slog.String("purchase_id", record.PurchaseID),
			slog.String("race_slug", record.RaceSlug),
			slog.Any("error", err),
		)
		return webhookDomain.NewForwardFailedResult(event, record, err), nil
	}

	r.logger.Info("webhook event forwarded to gateway",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
		slog.String("purchase_id", record.PurchaseID),
		slog.String("race_slug", record.RaceSlug),
	)

	return webhookDomain.NewForwardedResult(event, record), nil
}

// Forward implements RelayUseCase.
func (r *relayUseCase) Forward(
	ctx context.Context,
	record webhookDomain.PurchaseRecord,
) (*webhookDomain.RelayResult, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	manual := &webhookDomain.Event{}
	msg := webhookDomain.BuildMessage(record, r.config.StorefrontURL, r.config.Channel)
	if err := r.gateway.SendMessage(ctx, msg); err != nil {
		r.logger.Error("manual forward failed",
			slog.String("purchase_id", record.PurchaseID),
			slog.Any("error", err),
		)
		return webhookDomain.NewForwardFailedResult(manual, record, err), err
	}

	r.logger.Info("manual forward delivered", slog.String("purchase_id", record.PurchaseID))
	return webhookDomain.NewForwardedResult(manual, record), nil
}
