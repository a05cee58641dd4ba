// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"

	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
)

// Config holds all application configuration.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
	ShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// StripeWebhookSecret is the provider signing secret. Empty disables signature verification.
	StripeWebhookSecret string
	// StripeSignatureTolerance is the maximum accepted age of a signed payload.
	StripeSignatureTolerance time.Duration

	// GatewayURL is the base URL of the downstream automation gateway.
	GatewayURL string
	// GatewayToken is the bearer token sent to the gateway.
	GatewayToken string
	// GatewayChannel is the routing channel placed in every outbound message.
	GatewayChannel string
	// GatewayTimeout bounds the single outbound call made per accepted event.
	GatewayTimeout time.Duration

	// StorefrontURL is the base URL used to build the purchase lookup link.
	StorefrontURL string

	// MaxBodyBytes caps the size of an inbound webhook body.
	MaxBodyBytes int64

	// RateLimitEnabled indicates whether per-IP rate limiting of the webhook route is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for the webhook rate limiter.
	RateLimitBurst int

	// TrustedProxies is a comma-separated list of proxy IPs or CIDRs whose forwarding headers
	// are believed when resolving the client IP. Empty trusts none.
	TrustedProxies string

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 15, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Payment provider
		StripeWebhookSecret:      strings.TrimSpace(env.GetString("STRIPE_WEBHOOK_SECRET", "")),
		StripeSignatureTolerance: env.GetDuration("STRIPE_SIGNATURE_TOLERANCE_SECONDS", 300, time.Second),

		// Downstream gateway
		GatewayURL:     strings.TrimRight(env.GetString("GATEWAY_URL", "http://localhost:18789"), "/"),
		GatewayToken:   env.GetString("GATEWAY_TOKEN", ""),
		GatewayChannel: env.GetString("GATEWAY_CHANNEL", "main"),
		GatewayTimeout: env.GetDuration("GATEWAY_TIMEOUT_SECONDS", 30, time.Second),

		StorefrontURL: strings.TrimRight(env.GetString("STOREFRONT_URL", "https://artlu.run"), "/"),

		MaxBodyBytes: int64(env.GetInt("MAX_BODY_BYTES", 1048576)),

		// Rate Limiting (webhook route, IP-based)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 50.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 100),

		TrustedProxies: env.GetString("TRUSTED_PROXIES", ""),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "relay"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// TrustMode returns the webhook trust mode implied by the configured signing secret.
func (c *Config) TrustMode() webhookDomain.TrustMode {
	if c.StripeWebhookSecret == "" {
		return webhookDomain.TrustModeUnauthenticated
	}
	return webhookDomain.TrustModeAuthenticated
}

// TrustedProxyList returns the configured trusted proxies, or nil when none are set.
func (c *Config) TrustedProxyList() []string {
	var proxies []string
	for _, part := range strings.Split(c.TrustedProxies, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			proxies = append(proxies, trimmed)
		}
	}
	return proxies
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
