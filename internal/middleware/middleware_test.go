package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		expectedStatus int
		expectHandler  bool
	}{
		{name: "Preflight request", method: http.MethodOptions, expectedStatus: http.StatusNoContent},
		{name: "GET request", method: http.MethodGet, expectedStatus: http.StatusOK, expectHandler: true},
		{name: "PATCH request", method: http.MethodPatch, expectedStatus: http.StatusOK, expectHandler: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := CORS(okHandler(&handlerCalled))

			req := httptest.NewRequest(tt.method, "/test", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
			assert.Equal(t, "Content-Type, X-API-Key, Idempotency-Key", w.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	logger := zerolog.Nop()
	validAPIKey := "test-api-key-123"

	tests := []struct {
		name           string
		apiKey         string
		expectedStatus int
		expectHandler  bool
	}{
		{name: "Valid API key", apiKey: validAPIKey, expectedStatus: http.StatusOK, expectHandler: true},
		{name: "Invalid API key", apiKey: "invalid-key", expectedStatus: http.StatusUnauthorized},
		{name: "Short invalid API key", apiKey: "x", expectedStatus: http.StatusUnauthorized},
		{name: "Valid key as prefix", apiKey: validAPIKey + "4", expectedStatus: http.StatusUnauthorized},
		{name: "Truncated valid key", apiKey: validAPIKey[:len(validAPIKey)-1], expectedStatus: http.StatusUnauthorized},
		{name: "Missing API key", apiKey: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := APIKeyAuth(validAPIKey, logger)(okHandler(&handlerCalled))

			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			if !tt.expectHandler {
				var body model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, model.ErrCodeUnauthorised, body.Error)
			}
		})
	}
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name          string
		handlerStatus int
		expectedLevel string
	}{
		{name: "Successful request", handlerStatus: http.StatusOK, expectedLevel: "info"},
		{name: "Rejected request", handlerStatus: http.StatusUnprocessableEntity, expectedLevel: "info"},
		{name: "Server error", handlerStatus: http.StatusInternalServerError, expectedLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})
			handler := middleware.RequestID(Logging(logger)(testHandler))

			req := httptest.NewRequest(http.MethodPost, "/api/checkout/orders", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.handlerStatus, w.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.expectedLevel, entry["level"])
			assert.EqualValues(t, tt.handlerStatus, entry["status"])
			assert.Equal(t, "/api/checkout/orders", entry["path"])
			assert.NotEmpty(t, entry["request_id"])
		})
	}
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name           string
		panicValue     any
		expectedStatus int
		expectedLog    string
	}{
		{name: "No panic", expectedStatus: http.StatusOK},
		{name: "Panic with string", panicValue: "something went wrong", expectedStatus: http.StatusInternalServerError, expectedLog: "panic recovered"},
		{name: "Panic with error", panicValue: assert.AnError, expectedStatus: http.StatusInternalServerError, expectedLog: "panic recovered"},
		{
			name: "Integrity violation",
			panicValue: &model.IntegrityError{
				Invariant: "discount must not exceed subtotal",
				Values:    map[string]int64{"discount": 200, "subtotal": 100},
			},
			expectedStatus: http.StatusInternalServerError,
			expectedLog:    "pricing integrity violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.panicValue != nil {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Recovery(zerolog.New(&buf))(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			// Ensure we don't panic in the test
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.panicValue == nil {
				assert.Empty(t, buf.String())
				return
			}

			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, model.ErrCodeInternalError, body.Error)
			assert.Contains(t, buf.String(), tt.expectedLog)
		})
	}
}

func TestRecovery_IntegrityValuesLogged(t *testing.T) {
	var buf bytes.Buffer
	handler := Recovery(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(&model.IntegrityError{Invariant: "total must not be negative", Values: map[string]int64{"total": -5}})
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/checkout/price", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "total must not be negative", entry["invariant"])
	assert.Equal(t, map[string]any{"total": float64(-5)}, entry["values"])
}

func TestResponseWriter(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusCreated, http.StatusNotFound, http.StatusInternalServerError} {
		w := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		rw.WriteHeader(code)

		assert.Equal(t, code, rw.statusCode)
		assert.Equal(t, code, w.Code)
		assert.Same(t, w, rw.Unwrap())
	}
}
