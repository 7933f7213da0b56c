// Package realtime is a client for the outbound voice-call API.
package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"voice-call-relay/internal/models"
	"voice-call-relay/internal/utils"
)

const (
	defaultTimeout    = 30 * time.Second
	maxErrorBodyBytes = 4 << 10
	maxResponseBytes  = 1 << 20
)

// APIError is returned when the voice API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("voice api returned status %d: %s", e.StatusCode, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for responses that succeed but cannot be read.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client starts outbound calls. It never retries.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client posting to endpoint with a bearer token.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Endpoint returns the URL calls are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// StartCall posts the call request and returns the voice API session id.
// Any 2xx means the call was placed; the session id is empty when the body
// is empty or not JSON.
func (c *Client) StartCall(ctx context.Context, call *models.CallRequest) (string, error) {
	body, err := json.Marshal(call)
	if err != nil {
		return "", fmt.Errorf("failed to marshal call request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	utils.SetRequestIDHeader(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(excerpt)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn("Failed to read voice api response",
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return "", nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}

	var result models.CallStartResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn("Voice api response is not JSON, continuing without session id",
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return "", nil
	}

	return result.SessionID, nil
}
