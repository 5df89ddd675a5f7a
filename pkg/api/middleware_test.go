package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		requestHeader  string
		expectedStatus int
	}{
		{
			name:           "valid API key",
			apiKey:         "test-key",
			requestHeader:  "test-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing API key header",
			apiKey:         "test-key",
			requestHeader:  "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid API key",
			apiKey:         "test-key",
			requestHeader:  "wrong-key",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "check disabled without key",
			apiKey:         "",
			requestHeader:  "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "check disabled ignores header",
			apiKey:         "",
			requestHeader:  "anything",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			handler := apiKeyMiddleware(tt.apiKey, NewMetrics(prometheus.NewRegistry()))(testHandler)

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.requestHeader != "" {
				req.Header.Set("X-API-Key", tt.requestHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAPIKeyMiddlewareRecordsAuth(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	handler := apiKeyMiddleware("k", metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, key := range []string{"k", "bad", "k"} {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-API-Key", key)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.authRequestsTotal.WithLabelValues(statusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.authRequestsTotal.WithLabelValues(statusError)))
}

func TestSendSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	sendSuccess(w, map[string]string{"message": "test"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "test", resp.Data["message"])
}

func TestSendError(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		statusCode int
	}{
		{name: "bad request error", message: "Invalid request", statusCode: http.StatusBadRequest},
		{name: "unauthorized error", message: "Not authorized", statusCode: http.StatusUnauthorized},
		{name: "internal server error", message: "Server error", statusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			sendError(w, tt.message, tt.statusCode)

			assert.Equal(t, tt.statusCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}
