// Package http provides the public HTTP server, its middleware and the metrics server.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/webhook-relay/internal/config"
	"github.com/allisson/webhook-relay/internal/metrics"
	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
	webhookHTTP "github.com/allisson/webhook-relay/internal/webhook/http"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "webhook-relay"

const (
	readTimeout = 15 * time.Second
	// writeTimeoutMargin is added on top of body reading and the gateway call.
	writeTimeoutMargin = 10 * time.Second
)

// Server represents the public HTTP server.
type Server struct {
	server    *http.Server
	router    *gin.Engine
	logger    *slog.Logger
	startedAt time.Time
	ready     atomic.Bool

	gatewayURL string
	trustMode  webhookDomain.TrustMode
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status                string    `json:"status"`
	Service               string    `json:"service"`
	GatewayURL            string    `json:"gateway_url"`
	SignatureVerification bool      `json:"signature_verification"`
	TrustMode             string    `json:"trust_mode"`
	UptimeSeconds         int64     `json:"uptime_seconds"`
	StartedAt             time.Time `json:"started_at"`
}

// NewServer creates a new HTTP server.
func NewServer(host string, port int, logger *slog.Logger) *Server {
	return &Server{
		logger:    logger,
		startedAt: time.Now().UTC(),
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout(0),
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with all routes and middleware.
// The context bounds background work started by middleware, such as rate limiter cleanup.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	webhookHandler *webhookHTTP.WebhookHandler,
	metricsProvider *metrics.Provider,
) {
	s.gatewayURL = cfg.GatewayURL
	s.trustMode = cfg.TrustMode()
	s.server.WriteTimeout = writeTimeout(cfg.GatewayTimeout)

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		s.logger.Error("invalid TRUSTED_PROXIES, forwarding headers will be ignored",
			slog.String("trusted_proxies", cfg.TrustedProxies),
			slog.Any("error", err),
		)
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	webhookRoute := []gin.HandlerFunc{}
	if cfg.RateLimitEnabled {
		webhookRoute = append(webhookRoute, WebhookRateLimitMiddleware(
			ctx,
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		))
	}
	webhookRoute = append(webhookRoute, webhookHandler.StripeWebhookHandler)
	router.POST("/stripe-webhook", webhookRoute...)

	s.router = router
	s.ready.Store(true)
}

// writeTimeout bounds the whole exchange with the provider. The acknowledgment is written
// after the gateway call, so it must outlast body reading plus the gateway timeout.
func writeTimeout(gatewayTimeout time.Duration) time.Duration {
	return readTimeout + gatewayTimeout + writeTimeoutMargin
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must be called first.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server",
		slog.String("addr", s.server.Addr),
		slog.String("gateway_url", s.gatewayURL),
		slog.String("trust_mode", s.trustMode.String()),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown marks the server not ready and gracefully shuts it down.
func (s *Server) Shutdown(ctx context.Context) error {
	s.ready.Store(false)
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports service status, the downstream target and the trust mode.
// GET /health
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:                "ok",
		Service:               ServiceName,
		GatewayURL:            s.gatewayURL,
		SignatureVerification: s.trustMode.VerifiesSignatures(),
		TrustMode:             s.trustMode.String(),
		UptimeSeconds:         int64(time.Since(s.startedAt).Seconds()),
		StartedAt:             s.startedAt,
	})
}

// readinessHandler answers 503 once shutdown has started.
// GET /ready
func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
