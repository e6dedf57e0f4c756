// Package client is the HTTP client for the comfyrun API, used by the CLI
// to talk to a running serve daemon.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/comfyrun/comfyrun/internal/cost"
	"github.com/comfyrun/comfyrun/internal/pod"
)

// DefaultBaseURL is where a locally started daemon listens.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Client talks to the comfyrun HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the given base URL; empty means the local
// default.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GPU mirrors the API's GPU catalog entry.
type GPU struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	VRAMGB      int     `json:"vram_gb"`
	Tier        string  `json:"tier"`
	CostPerHour float64 `json:"cost_per_hour"`
}

// Health is the health endpoint's response.
type Health struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	ActivePods   int    `json:"active_pods"`
	EventClients int    `json:"event_clients"`
}

// CreatePodRequest is the pod creation payload.
type CreatePodRequest struct {
	Name   string      `json:"name"`
	GPUID  string      `json:"gpu_id"`
	Config *pod.Config `json:"config,omitempty"`
}

// EstimateResponse is the cost estimate response.
type EstimateResponse struct {
	GPUID         string  `json:"gpu_id"`
	Hours         float64 `json:"hours"`
	Interruptible bool    `json:"interruptible"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// GetHealth fetches daemon health.
func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGPUs fetches the GPU catalog.
func (c *Client) ListGPUs(ctx context.Context) ([]GPU, error) {
	var out struct {
		GPUs []GPU `json:"gpus"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/gpus", nil, &out); err != nil {
		return nil, err
	}
	return out.GPUs, nil
}

// ListPods fetches all tracked pods.
func (c *Client) ListPods(ctx context.Context) ([]pod.View, error) {
	var out struct {
		Pods []pod.View `json:"pods"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pods", nil, &out); err != nil {
		return nil, err
	}
	return out.Pods, nil
}

// GetPod fetches one pod.
func (c *Client) GetPod(ctx context.Context, id string) (*pod.View, error) {
	var out pod.View
	if err := c.do(ctx, http.MethodGet, "/api/pods/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePod provisions a new pod.
func (c *Client) CreatePod(ctx context.Context, req CreatePodRequest) (*pod.View, error) {
	var out pod.View
	if err := c.do(ctx, http.MethodPost, "/api/pods", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TerminatePod deletes a pod.
func (c *Client) TerminatePod(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/pods/"+id, nil, nil)
}

// ResumePod restarts a stopped pod.
func (c *Client) ResumePod(ctx context.Context, id string) (*pod.View, error) {
	var out pod.View
	if err := c.do(ctx, http.MethodPost, "/api/pods/"+id+"/resume", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPodLogs fetches a pod's setup log.
func (c *Client) GetPodLogs(ctx context.Context, id string) ([]string, error) {
	var out struct {
		Logs []string `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pods/"+id+"/logs", nil, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// CostSummary fetches the aggregate cost report.
func (c *Client) CostSummary(ctx context.Context) (*cost.Summary, error) {
	var out cost.Summary
	if err := c.do(ctx, http.MethodGet, "/api/monitoring/cost/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CostBreakdown fetches the detailed report for one pod.
func (c *Client) CostBreakdown(ctx context.Context, id string) (*cost.Breakdown, error) {
	var out cost.Breakdown
	if err := c.do(ctx, http.MethodGet, "/api/monitoring/cost/pod/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Estimate fetches a fixed-duration cost estimate.
func (c *Client) Estimate(ctx context.Context, gpuID string, hours float64, interruptible bool) (*EstimateResponse, error) {
	req := map[string]any{"gpu_id": gpuID, "hours": hours, "interruptible": interruptible}
	var out EstimateResponse
	if err := c.do(ctx, http.MethodPost, "/api/monitoring/cost/estimate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed (is the daemon running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
			e.Error = string(data)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
