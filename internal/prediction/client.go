package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"aidetect/internal/features"
	"aidetect/internal/logging"
	"aidetect/pkg/models"
)

// StatusOnline is the status reported once the model is loaded.
const StatusOnline = "online"

// ErrWakeFailure marks a failed wake-up call.
var ErrWakeFailure = errors.New("wake-up failed")

// HTTPError is a non-2xx response from the prediction service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d, message: %s", e.StatusCode, e.Body)
}

// Client handles interactions with the remote prediction service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the service rooted at endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	return c
}

// Endpoint returns the service root.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Wakeup asks a cold service to start loading. The response body is ignored.
func (c *Client) Wakeup(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/api/wakeup", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWakeFailure, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !ok(resp.StatusCode) {
		return fmt.Errorf("%w: %w", ErrWakeFailure, &HTTPError{StatusCode: resp.StatusCode, Body: resp.Status})
	}
	c.logger.Info("Wake-up call sent")
	return nil
}

// Status returns the service's reported status, "online" once ready.
func (c *Client) Status(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/status", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var status models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return "", fmt.Errorf("failed to parse status response: %w", err)
	}
	return status.Status, nil
}

// Predict submits a feature vector and returns the predicted label.
func (c *Client) Predict(ctx context.Context, v features.Vector) (string, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/predict", jsonData)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if !ok(resp.StatusCode) {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result models.PredictionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	c.logger.Info("Prediction received", zap.String("prediction", result.Prediction))
	return result.Prediction, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	return resp, nil
}

func ok(code int) bool {
	return code >= 200 && code < 300
}
