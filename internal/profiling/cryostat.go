// Package profiling fetches JFR analysis reports from a Cryostat instance.
package profiling

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	// maxReportSize bounds report bodies read from Cryostat.
	maxReportSize = 4 * 1024 * 1024

	defaultTimeout = 30 * time.Second
)

// AuthHeaderFunc supplies the Authorization header value for outgoing
// requests. An empty return means no header is sent.
type AuthHeaderFunc func() string

// CryostatClient fetches automated analysis reports for JVM targets from the
// Cryostat HTTP API. Safe for concurrent use.
type CryostatClient struct {
	baseURL    string
	httpClient *http.Client
	authHeader AuthHeaderFunc
	logger     *slog.Logger
}

// Option configures a CryostatClient.
type Option func(*CryostatClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *CryostatClient) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithAuthHeader sets the Authorization header supplier.
func WithAuthHeader(fn AuthHeaderFunc) Option {
	return func(cl *CryostatClient) {
		cl.authHeader = fn
	}
}

// WithLogger sets the logger for the CryostatClient.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *CryostatClient) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewCryostatClient creates a client for the given Cryostat base URL,
// e.g. "http://cryostat.observability.svc:8181".
func NewCryostatClient(baseURL string, opts ...Option) (*CryostatClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("cryostat: base URL must not be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("cryostat: invalid base URL %q: %w", baseURL, err)
	}

	c := &CryostatClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Report fetches the automated analysis report for the given target, which is
// a Cryostat target identifier such as a JMX service URL or a pod connect
// string. The raw report text is returned unmodified.
func (c *CryostatClient) Report(ctx context.Context, target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("cryostat: target must not be empty")
	}

	u := c.baseURL + "/api/v1/targets/" + url.PathEscape(target) + "/reports"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("cryostat: building request: %w", err)
	}
	if c.authHeader != nil {
		if h := c.authHeader(); h != "" {
			req.Header.Set("Authorization", h)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cryostat: fetching report: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportSize))
	if err != nil {
		return "", fmt.Errorf("cryostat: reading report: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cryostat: report for target %q returned status %d", target, resp.StatusCode)
	}
	return string(body), nil
}
