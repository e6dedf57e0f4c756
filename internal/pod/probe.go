package pod

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Prober checks whether a pod's endpoint answers HTTP requests.
type Prober interface {
	Probe(ctx context.Context, url string) error
}

// HTTPProber probes an endpoint with a plain GET and accepts any 2xx reply.
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber returns a prober with the given per-probe timeout.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProber{client: &http.Client{Timeout: timeout}}
}

// Probe issues a GET against the endpoint root.
func (p *HTTPProber) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
