package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventory-nlu/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()
	c, err := NewClient(&Config{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return c
}

// ==========================
// Happy Path
// ==========================

func TestPredict_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/classify", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "how many tools", req["text"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"probabilities": []float64{0.05, 0.8, 0.05, 0.02, 0.03, 0.03, 0.02},
			"model_version": "1.0.0",
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	p, err := c.Predict(context.Background(), "how many tools")
	require.NoError(t, err)
	assert.Len(t, p.Probabilities, 7)
	assert.Equal(t, 0.8, p.Probabilities[1])
	assert.Equal(t, "1.0.0", p.ModelVersion)
}

func TestPredict_SendsAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"probabilities": []float64{1},
		})
	}))
	defer server.Close()

	c, err := NewClient(&Config{
		BaseURL: server.URL,
		APIKey:  "secret-key",
		Timeout: time.Second,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

// ==========================
// Retry / Failure Behavior
// ==========================

func TestPredict_RetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"probabilities": []float64{0.9, 0.1},
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 3)
	p, err := c.Predict(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 0.9, p.Probabilities[0])
}

func TestPredict_ExhaustedRetriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 1)
	_, err := c.Predict(context.Background(), "q")
	assert.ErrorIs(t, err, ErrInferenceFailed)
}

func TestPredict_ContextCancellationAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{"probabilities": []float64{1}})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 5)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Predict(ctx, "q")
	assert.ErrorIs(t, err, ErrInferenceTimeout)
}

// ==========================
// Response Shape Validation
// ==========================

func TestPredict_RejectsMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json at all`},
		{"missing probabilities", `{"model_version": "1.0.0"}`},
		{"empty probabilities", `{"probabilities": []}`},
		{"non numeric entries", `{"probabilities": ["a", "b"]}`},
		{"out of range probability", `{"probabilities": [1.7]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL, 0)
			_, err := c.Predict(context.Background(), "q")
			assert.ErrorIs(t, err, ErrInferenceResponseInvalid)
		})
	}
}

// ==========================
// Config
// ==========================

func TestConfigValidate(t *testing.T) {
	err := (&Config{}).Validate()
	assert.Error(t, err)

	cfg := &Config{BaseURL: "http://model:9000"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
