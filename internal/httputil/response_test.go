package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/webhook-relay/internal/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/stripe-webhook", nil)
	return c, w
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
		expectedLevel  string
	}{
		{
			name:           "unauthorized",
			err:            apperrors.Wrap(apperrors.ErrUnauthorized, "invalid webhook signature"),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "unauthorized",
			expectedLevel:  "ERROR",
		},
		{
			name:           "bad request",
			err:            apperrors.Wrap(apperrors.ErrBadRequest, "malformed webhook payload"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "bad_request",
			expectedLevel:  "WARN",
		},
		{
			name:           "invalid input",
			err:            apperrors.Wrap(apperrors.ErrInvalidInput, "record is incomplete"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid_input",
			expectedLevel:  "WARN",
		},
		{
			name:           "upstream",
			err:            apperrors.Wrap(apperrors.ErrUpstream, "gateway delivery failed"),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "upstream_error",
			expectedLevel:  "ERROR",
		},
		{
			name:           "unknown error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "internal_error",
			expectedLevel:  "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))
			c, w := newTestContext()

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedError, body.Error)

			var line map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &line))
			assert.Equal(t, tt.expectedLevel, line["level"])
			assert.Equal(t, float64(tt.expectedStatus), line["status_code"])
		})
	}

	t.Run("internal error details are hidden", func(t *testing.T) {
		c, w := newTestContext()

		HandleErrorGin(c, errors.New("database password is hunter2"), nil)

		assert.NotContains(t, w.Body.String(), "hunter2")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext()

		HandleErrorGin(c, nil, nil)

		assert.Empty(t, w.Body.String())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()

	HandleBadRequestGin(c, errors.New("cannot read body"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"cannot read body"}`, w.Body.String())
}

func TestHandlePayloadTooLargeGin(t *testing.T) {
	c, w := newTestContext()

	HandlePayloadTooLargeGin(c, 1024, nil)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t,
		`{"error":"payload_too_large","message":"Request body exceeds the configured limit"}`,
		w.Body.String(),
	)
}
