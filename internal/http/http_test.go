package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/webhook-relay/internal/config"
	"github.com/allisson/webhook-relay/internal/metrics"
	webhookDomain "github.com/allisson/webhook-relay/internal/webhook/domain"
	webhookHTTP "github.com/allisson/webhook-relay/internal/webhook/http"
	"github.com/allisson/webhook-relay/internal/webhook/usecase/mocks"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		GatewayURL:              "http://gateway.internal:18789",
		StripeWebhookSecret:     "whsec_test",
		MaxBodyBytes:            1 << 20,
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 1,
		RateLimitBurst:          2,
		MetricsNamespace:        "test_relay",
	}
}

// createTestServer creates a server with a fully configured router and a mocked use case.
func createTestServer(t *testing.T, cfg *config.Config, provider *metrics.Provider) (*Server, *mocks.MockRelayUseCase) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := discardLogger()
	useCase := &mocks.MockRelayUseCase{}
	handler := webhookHTTP.NewWebhookHandler(useCase, cfg.MaxBodyBytes, logger)

	server := NewServer("localhost", 0, logger)
	server.SetupRouter(ctx, cfg, handler, provider)

	return server, useCase
}

func TestServer_HealthEndpoint(t *testing.T) {
	t.Run("Success_AuthenticatedMode", func(t *testing.T) {
		server, _ := createTestServer(t, testConfig(), nil)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ok", response.Status)
		assert.Equal(t, ServiceName, response.Service)
		assert.Equal(t, "http://gateway.internal:18789", response.GatewayURL)
		assert.True(t, response.SignatureVerification)
		assert.Equal(t, "authenticated", response.TrustMode)
		assert.GreaterOrEqual(t, response.UptimeSeconds, int64(0))
		assert.False(t, response.StartedAt.IsZero())
	})

	t.Run("Success_UnauthenticatedMode", func(t *testing.T) {
		cfg := testConfig()
		cfg.StripeWebhookSecret = ""
		server, _ := createTestServer(t, cfg, nil)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.False(t, response.SignatureVerification)
		assert.Equal(t, "unauthenticated", response.TrustMode)
	})

	t.Run("Success_UptimeGrows", func(t *testing.T) {
		server := NewServer("localhost", 0, discardLogger())
		server.startedAt = time.Now().Add(-90 * time.Second)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
		server.healthHandler(c)

		var response HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.GreaterOrEqual(t, response.UptimeSeconds, int64(90))
	})
}

func TestServer_ReadyEndpoint(t *testing.T) {
	t.Run("Success_ReadyAfterSetup", func(t *testing.T) {
		server, _ := createTestServer(t, testConfig(), nil)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
	})

	t.Run("Error_NotReadyAfterShutdown", func(t *testing.T) {
		server, _ := createTestServer(t, testConfig(), nil)
		require.NoError(t, server.Shutdown(context.Background()))

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"not_ready"}`, w.Body.String())
	})
}

func TestServer_WebhookRoute(t *testing.T) {
	event := &webhookDomain.Event{ID: "evt_1", Type: webhookDomain.EventTypeCheckoutCompleted}

	t.Run("Success_RoutesToHandlerWithRequestID", func(t *testing.T) {
		server, useCase := createTestServer(t, testConfig(), nil)
		useCase.On("Relay", mock.Anything, []byte(`{}`), "t=1,v1=abc").
			Return(webhookDomain.NewFilteredResult(event), nil).
			Once()

		req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader([]byte(`{}`)))
		req.Header.Set(webhookHTTP.SignatureHeader, "t=1,v1=abc")
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		useCase.AssertExpectations(t)
	})

	t.Run("Error_RateLimited", func(t *testing.T) {
		server, useCase := createTestServer(t, testConfig(), nil)
		useCase.On("Relay", mock.Anything, mock.Anything, mock.Anything).
			Return(webhookDomain.NewFilteredResult(event), nil)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader([]byte(`{}`)))
			server.GetHandler().ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
		useCase.AssertNumberOfCalls(t, "Relay", 2)
	})

	t.Run("Error_ForwardedForIgnoredWithoutTrustedProxies", func(t *testing.T) {
		server, useCase := createTestServer(t, testConfig(), nil)
		useCase.On("Relay", mock.Anything, mock.Anything, mock.Anything).
			Return(webhookDomain.NewFilteredResult(event), nil)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader([]byte(`{}`)))
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
			server.GetHandler().ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("Success_ForwardedForHonoredFromTrustedProxy", func(t *testing.T) {
		cfg := testConfig()
		// httptest requests originate from 192.0.2.1.
		cfg.TrustedProxies = "192.0.2.0/24"
		server, useCase := createTestServer(t, cfg, nil)
		useCase.On("Relay", mock.Anything, mock.Anything, mock.Anything).
			Return(webhookDomain.NewFilteredResult(event), nil)

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader([]byte(`{}`)))
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
			server.GetHandler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Error_InvalidTrustedProxiesFallBackToRemoteAddr", func(t *testing.T) {
		cfg := testConfig()
		cfg.TrustedProxies = "not-an-ip"
		server, useCase := createTestServer(t, cfg, nil)
		useCase.On("Relay", mock.Anything, mock.Anything, mock.Anything).
			Return(webhookDomain.NewFilteredResult(event), nil)

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader([]byte(`{}`)))
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
			server.GetHandler().ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("Success_RateLimitDisabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimitEnabled = false
		server, useCase := createTestServer(t, cfg, nil)
		useCase.On("Relay", mock.Anything, mock.Anything, mock.Anything).
			Return(webhookDomain.NewFilteredResult(event), nil)

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader([]byte(`{}`)))
			server.GetHandler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Error_MethodNotRouted", func(t *testing.T) {
		server, _ := createTestServer(t, testConfig(), nil)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stripe-webhook", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_HTTPMetrics(t *testing.T) {
	provider, err := metrics.NewProvider("test_relay")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	server, _ := createTestServer(t, testConfig(), provider)

	w := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	metricsServer := NewMetricsServer("localhost", 0, discardLogger(), provider)
	mw := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(mw, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, mw.Code)
	assert.Contains(t, mw.Body.String(), "test_relay_http_requests_total")
	assert.Contains(t, mw.Body.String(), `route="/health"`)
}

func TestServer_NoMetricsEndpoint(t *testing.T) {
	server, _ := createTestServer(t, testConfig(), nil)

	w := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_WriteTimeoutCoversGatewayCall(t *testing.T) {
	tests := []struct {
		name           string
		gatewayTimeout time.Duration
		expected       time.Duration
	}{
		{name: "default gateway timeout", gatewayTimeout: 30 * time.Second, expected: 55 * time.Second},
		{name: "long gateway timeout", gatewayTimeout: 90 * time.Second, expected: 115 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.GatewayTimeout = tt.gatewayTimeout
			server, _ := createTestServer(t, cfg, nil)

			assert.Equal(t, tt.expected, server.server.WriteTimeout)
			assert.Greater(t, server.server.WriteTimeout, server.server.ReadTimeout+cfg.GatewayTimeout)
		})
	}
}

func TestServer_StartRequiresRouter(t *testing.T) {
	server := NewServer("localhost", 0, discardLogger())

	err := server.Start(context.Background())

	assert.Error(t, err)
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server, _ := createTestServer(t, testConfig(), nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, server.Shutdown(shutdownCtx))
	assert.NoError(t, <-errChan)
}

func TestCustomLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedLevel string
	}{
		{"info for success", http.StatusOK, "INFO"},
		{"warn for client error", http.StatusUnauthorized, "WARN"},
		{"error for server error", http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))

			router := gin.New()
			router.Use(requestid.New(requestid.WithGenerator(func() string {
				return uuid.Must(uuid.NewV7()).String()
			})))
			router.Use(CustomLoggerMiddleware(logger))
			router.POST("/stripe-webhook", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/stripe-webhook", nil))

			var line map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &line))
			assert.Equal(t, tt.expectedLevel, line["level"])
			assert.Equal(t, "/stripe-webhook", line["route"])
			assert.Equal(t, float64(tt.status), line["status"])
			assert.Equal(t, w.Header().Get("X-Request-Id"), line["request_id"])
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
