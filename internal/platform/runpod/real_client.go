package runpod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Timeouts holds per-operation timeouts. Pod creation at this provider can
// take minutes, so it gets a generous budget; status and log polls are kept
// short so monitor loops never stall behind a slow call.
type Timeouts struct {
	Create time.Duration
	Poll   time.Duration
}

// DefaultTimeouts returns the default timeout configuration.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Create: 800 * time.Second,
		Poll:   30 * time.Second,
	}
}

// RealClient implements Client against the provider's REST API.
type RealClient struct {
	apiKey     string
	baseURL    string
	timeouts   Timeouts
	httpClient *http.Client
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithBaseURL sets a custom API endpoint (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *RealClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.httpClient = hc
	}
}

// WithTimeouts sets custom per-operation timeouts.
func WithTimeouts(t Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// NewRealClient creates a client authenticated with the given API key.
func NewRealClient(apiKey string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		timeouts:   DefaultTimeouts(),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePod implements Client.
func (c *RealClient) CreatePod(ctx context.Context, req CreateRequest) (*Pod, error) {
	var pod Pod
	if err := c.do(ctx, http.MethodPost, "/pods", c.timeouts.Create, req, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

// GetPod implements Client.
func (c *RealClient) GetPod(ctx context.Context, id string) (*Pod, error) {
	var pod Pod
	if err := c.do(ctx, http.MethodGet, "/pods/"+id, c.timeouts.Poll, nil, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

// ListPods implements Client. The provider returns either a bare array or a
// {"pods": [...]} wrapper depending on API version; both are accepted.
func (c *RealClient) ListPods(ctx context.Context) ([]Pod, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/pods", c.timeouts.Poll, nil, &raw); err != nil {
		return nil, err
	}

	var pods []Pod
	if err := json.Unmarshal(raw, &pods); err == nil {
		return pods, nil
	}

	var wrapped struct {
		Pods []Pod `json:"pods"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode pod listing: %w", err)
	}
	return wrapped.Pods, nil
}

// ResumePod implements Client.
func (c *RealClient) ResumePod(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/pods/"+id+"/start", c.timeouts.Poll, nil, nil)
}

// TerminatePod implements Client.
func (c *RealClient) TerminatePod(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/pods/"+id, c.timeouts.Poll, nil, nil)
}

// GetPodLogs implements Client.
func (c *RealClient) GetPodLogs(ctx context.Context, id string) ([]LogLine, error) {
	var resp struct {
		Logs []LogLine `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, "/pods/"+id+"/logs", c.timeouts.Poll, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// do performs one API call: marshals the body, applies the timeout, sends
// bearer auth, and normalizes non-2xx responses into *APIError.
func (c *RealClient) do(ctx context.Context, method, path string, timeout time.Duration, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, errorMessage(data))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts the provider's error message from a response body.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return string(bytes.TrimSpace(data))
}
