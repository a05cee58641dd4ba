// Package http provides the HTTP handler for inbound payment provider webhooks.
package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/webhook-relay/internal/httputil"
	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
	"github.com/allisson/webhook-relay/internal/webhook/http/dto"
	webhookUseCase "github.com/allisson/webhook-relay/internal/webhook/usecase"
)

// SignatureHeader is the header carrying the provider signature.
const SignatureHeader = "Stripe-Signature"

// WebhookHandler handles inbound provider webhooks.
type WebhookHandler struct {
	relayUseCase webhookUseCase.RelayUseCase
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(
	relayUseCase webhookUseCase.RelayUseCase,
	maxBodyBytes int64,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		relayUseCase: relayUseCase,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// StripeWebhookHandler verifies, filters and forwards one provider event.
// POST /stripe-webhook
//
// Gateway delivery failures still answer 200 with forwarded=false and the retry data, so the
// provider stops redelivering the event.
func (h *WebhookHandler) StripeWebhookHandler(c *gin.Context) {
	// The signature covers the exact bytes, so the body is read raw and never re-encoded.
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.HandlePayloadTooLargeGin(c, maxBytesErr.Limit, h.logger)
			return
		}
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	result, err := h.relayUseCase.Relay(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
	if err != nil {
		var missing *webhookDomain.MissingFieldsError
		if errors.As(err, &missing) {
			h.logger.Warn("webhook event missing required fields",
				slog.Any("missing_fields", missing.Fields),
				slog.String("purchase_id", missing.Record.PurchaseID),
			)
			c.JSON(http.StatusBadRequest, dto.MapMissingFieldsToResponse(missing))
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResultToResponse(result))
}
