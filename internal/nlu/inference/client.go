// Package inference is the HTTP binding of the sequence-classification
// capability: it POSTs query text to the model-serving API and returns the
// probability distribution over the canonical intent labels. Transport
// failures are retried with exponential backoff; response shape is checked
// against a JSON schema before anything is decoded into the pipeline.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "inventory-nlu/internal/common/http"
	"inventory-nlu/internal/common/logger"
	"inventory-nlu/internal/nlu/classify"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrInferenceFailed          = errors.New("INFERENCE_FAILED")
	ErrInferenceTimeout         = errors.New("INFERENCE_TIMEOUT")
	ErrInferenceResponseInvalid = errors.New("INFERENCE_RESPONSE_INVALID")
)

// responseSchema is the wire contract with the model server. Anything that
// does not satisfy it is rejected before decoding.
const responseSchema = `{
	"type": "object",
	"properties": {
		"probabilities": {
			"type": "array",
			"items": {"type": "number", "minimum": 0, "maximum": 1},
			"minItems": 1
		},
		"model_version": {"type": "string"}
	},
	"required": ["probabilities"]
}`

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("inference base URL is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return nil
}

// Client implements classify.SequenceClassifier over HTTP.
type Client struct {
	config *Config
	http   *commonhttp.Client
	schema *gojsonschema.Schema
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	return &Client{
		config: config,
		http:   commonhttp.NewClient(config.Timeout),
		schema: schema,
		logger: log,
	}, nil
}

// Predict sends the query text to POST /v1/classify and returns the label
// distribution. Transient failures (transport errors, non-200 statuses) are
// retried up to MaxRetries times with exponential backoff; context
// expiry aborts immediately with ErrInferenceTimeout.
func (c *Client) Predict(ctx context.Context, text string) (*classify.Prediction, error) {
	body, err := c.post(ctx, map[string]interface{}{"text": text})
	if err != nil {
		return nil, err
	}

	if err := c.validateShape(body); err != nil {
		return nil, err
	}

	var decoded struct {
		Probabilities []float64 `json:"probabilities"`
		ModelVersion  string    `json:"model_version"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrInferenceResponseInvalid, err)
	}

	return &classify.Prediction{
		Probabilities: decoded.Probabilities,
		ModelVersion:  decoded.ModelVersion,
	}, nil
}

func (c *Client) post(ctx context.Context, payload map[string]interface{}) ([]byte, error) {
	headers := map[string]string{}
	if c.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.config.APIKey
	}
	url := c.config.BaseURL + "/v1/classify"

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrInferenceTimeout
			}
			c.logger.Warn("retrying inference call", map[string]interface{}{
				"attempt": attempt,
				"error":   lastErr.Error(),
			})
		}

		resp, err := c.http.PostJSON(ctx, url, payload, headers)

		if ctx.Err() != nil ||
			errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return nil, ErrInferenceTimeout
		}

		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, ErrInferenceTimeout
	}
	return nil, fmt.Errorf("%w: %v", ErrInferenceFailed, lastErr)
}

func (c *Client) validateShape(body []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInferenceResponseInvalid, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("%w: %v", ErrInferenceResponseInvalid, details)
	}
	return nil
}
