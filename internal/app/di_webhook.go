package app

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/allisson/webhook-relay/internal/gateway"
	"github.com/allisson/webhook-relay/internal/metrics"
	webhookHTTP "github.com/allisson/webhook-relay/internal/webhook/http"
	webhookService "github.com/allisson/webhook-relay/internal/webhook/service"
	webhookUseCase "github.com/allisson/webhook-relay/internal/webhook/usecase"
)

// webhookComponents holds the lazily built webhook relay components.
type webhookComponents struct {
	verifier       webhookService.Verifier
	gatewayClient  *gateway.Client
	relayUseCase   webhookUseCase.RelayUseCase
	webhookHandler *webhookHTTP.WebhookHandler

	verifierInit       sync.Once
	gatewayClientInit  sync.Once
	relayUseCaseInit   sync.Once
	webhookHandlerInit sync.Once
}

// Verifier returns the webhook verifier selected by the configured trust mode.
func (c *Container) Verifier() webhookService.Verifier {
	c.verifierInit.Do(func() {
		c.verifier = c.initVerifier()
	})
	return c.verifier
}

// GatewayClient returns the downstream gateway client.
func (c *Container) GatewayClient() *gateway.Client {
	c.gatewayClientInit.Do(func() {
		c.gatewayClient = gateway.NewClient(c.config.GatewayURL, c.config.GatewayToken, c.config.GatewayTimeout)
	})
	return c.gatewayClient
}

// RelayUseCase returns the relay use case, decorated with metrics when enabled.
func (c *Container) RelayUseCase() (webhookUseCase.RelayUseCase, error) {
	var err error
	c.relayUseCaseInit.Do(func() {
		c.relayUseCase, err = c.initRelayUseCase()
		if err != nil {
			c.setInitError("relayUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("relayUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.relayUseCase, nil
}

// WebhookHandler returns the HTTP handler for provider webhooks.
func (c *Container) WebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	var err error
	c.webhookHandlerInit.Do(func() {
		c.webhookHandler, err = c.initWebhookHandler()
		if err != nil {
			c.setInitError("webhookHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("webhookHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.webhookHandler, nil
}

// initVerifier picks the verifier once and logs the resulting trust level.
func (c *Container) initVerifier() webhookService.Verifier {
	logger := c.Logger()
	verifier := webhookService.NewVerifier(
		c.config.StripeWebhookSecret,
		c.config.StripeSignatureTolerance,
		logger,
	)

	if verifier.Mode().VerifiesSignatures() {
		logger.Info("webhook signature verification enabled",
			slog.String("trust_mode", verifier.Mode().String()),
			slog.Duration("tolerance", c.config.StripeSignatureTolerance),
		)
	} else {
		logger.Warn("webhook signature verification disabled, STRIPE_WEBHOOK_SECRET is not set",
			slog.String("trust_mode", verifier.Mode().String()),
		)
	}

	return verifier
}

// initRelayUseCase creates the relay use case with all its dependencies.
// With metrics enabled both the use case and its gateway client are decorated.
func (c *Container) initRelayUseCase() (webhookUseCase.RelayUseCase, error) {
	var gatewayClient webhookUseCase.GatewayClient = c.GatewayClient()

	var relayMetrics metrics.RelayMetrics
	if c.config.MetricsEnabled {
		var err error
		relayMetrics, err = c.RelayMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get relay metrics for relay use case: %w", err)
		}
		gatewayClient = webhookUseCase.NewGatewayClientWithMetrics(gatewayClient, relayMetrics)
	}

	relayUseCase := webhookUseCase.NewRelayUseCase(
		webhookUseCase.Config{
			StorefrontURL: c.config.StorefrontURL,
			Channel:       c.config.GatewayChannel,
		},
		c.Verifier(),
		gatewayClient,
		c.Logger(),
	)

	if relayMetrics != nil {
		return webhookUseCase.NewRelayUseCaseWithMetrics(relayUseCase, relayMetrics), nil
	}
	return relayUseCase, nil
}

// initWebhookHandler creates the webhook handler.
func (c *Container) initWebhookHandler() (*webhookHTTP.WebhookHandler, error) {
	relayUseCase, err := c.RelayUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get relay use case for webhook handler: %w", err)
	}

	return webhookHTTP.NewWebhookHandler(relayUseCase, c.config.MaxBodyBytes, c.Logger()), nil
}
