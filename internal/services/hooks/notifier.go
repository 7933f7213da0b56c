// Package hooks forwards event data to automation webhooks on a best-effort basis.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"voice-call-relay/internal/utils"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBodyBytes  = 4 << 10
)

// ErrHookNotConfigured is reported when the target URL is empty.
var ErrHookNotConfigured = errors.New("hook url not configured")

// Result describes one delivery attempt. Err is nil on a 2xx response.
type Result struct {
	URL        string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Delivered reports whether the hook accepted the payload.
func (r Result) Delivered() bool {
	return r.Err == nil
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		if client != nil {
			n.httpClient = client
		}
	}
}

// Notifier posts JSON to hooks. It makes exactly one attempt per call.
type Notifier struct {
	httpClient *http.Client
}

// NewNotifier creates a notifier.
func NewNotifier(opts ...Option) *Notifier {
	n := &Notifier{httpClient: &http.Client{Timeout: defaultHTTPTimeout}}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Notify posts body to url. An empty body is sent without a Content-Type.
// Failures are reported in the Result, never retried.
func (n *Notifier) Notify(ctx context.Context, url string, body []byte) (result Result) {
	result.URL = url
	if url == "" {
		result.Err = ErrHookNotConfigured
		return result
	}

	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		result.Err = fmt.Errorf("build hook request: %w", err)
		return result
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	utils.SetRequestIDHeader(ctx, req)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("post hook: %w", err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return result
	}

	excerpt, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		result.Err = fmt.Errorf("hook status=%d read body: %w", resp.StatusCode, err)
		return result
	}
	result.Err = fmt.Errorf("hook status=%d body=%q", resp.StatusCode, string(excerpt))
	return result
}

// NotifyJSON marshals v and posts it to url.
func (n *Notifier) NotifyJSON(ctx context.Context, url string, v any) Result {
	body, err := json.Marshal(v)
	if err != nil {
		return Result{URL: url, Err: fmt.Errorf("marshal hook payload: %w", err)}
	}
	return n.Notify(ctx, url, body)
}
