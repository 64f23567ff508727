// Package cea talks to an external CEA-grade combustion service. The client
// only reports availability faithfully; deciding what to do when the service
// is down belongs to the platform.
package cea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

// DefaultTimeout bounds one remote computation.
const DefaultTimeout = 5 * time.Second

// ServiceUnavailableError marks the remote model as unreachable or unusable.
// Callers treat it as a fallback signal, not a hard failure.
type ServiceUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("cea: service unavailable at %s: %v", e.Endpoint, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

// Options configures a client. HTTPClient is injectable for tests.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// New returns a client for the given base URL.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("cea: base URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
	}, nil
}

// Probe checks the service status endpoint.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return &ServiceUnavailableError{Endpoint: c.baseURL, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &ServiceUnavailableError{Endpoint: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ServiceUnavailableError{Endpoint: c.baseURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return &ServiceUnavailableError{Endpoint: c.baseURL, Err: fmt.Errorf("decode status: %w", err)}
	}
	if status.Status != "ok" {
		return &ServiceUnavailableError{Endpoint: c.baseURL, Err: fmt.Errorf("service reports %q", status.Status)}
	}
	return nil
}

// Compute delegates one simulation to the remote model.
func (c *Client) Compute(ctx context.Context, req model.SimulationRequest) (model.PerformanceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return model.PerformanceResult{}, fmt.Errorf("cea: encode request: %w", err)
	}
	endpoint := c.baseURL + "/simulate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return model.PerformanceResult{}, &ServiceUnavailableError{Endpoint: endpoint, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.PerformanceResult{}, &ServiceUnavailableError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.PerformanceResult{}, &ServiceUnavailableError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	var result model.PerformanceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.PerformanceResult{}, &ServiceUnavailableError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("decode result: %w", err),
		}
	}
	result.Source = model.SourceAdvanced
	return result, nil
}
