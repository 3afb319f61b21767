// Package promql implements a minimal Prometheus HTTP API client for instant
// vector queries.
package promql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// queryPath is the instant query endpoint of the Prometheus HTTP API.
	queryPath = "/api/v1/query"

	// maxResponseSize bounds response bodies read from Prometheus.
	maxResponseSize = 4 * 1024 * 1024

	defaultTimeout = 15 * time.Second
)

// AuthHeaderFunc supplies the Authorization header value for outgoing
// requests. An empty return means no header is sent.
type AuthHeaderFunc func() string

// Client queries the Prometheus HTTP API. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authHeader AuthHeaderFunc
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithAuthHeader sets the Authorization header supplier.
func WithAuthHeader(fn AuthHeaderFunc) Option {
	return func(cl *Client) {
		cl.authHeader = fn
	}
}

// WithLogger sets the logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// NewClient creates a Prometheus client for the given base URL,
// e.g. "http://prometheus-operated.monitoring.svc:9090".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("promql: base URL must not be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("promql: invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// QueryResponse is the envelope of an instant query result.
type QueryResponse struct {
	Status string    `json:"status"`
	Data   QueryData `json:"data"`
}

// QueryData holds the typed result of an instant query.
type QueryData struct {
	ResultType string   `json:"resultType"`
	Result     []Sample `json:"result"`
}

// Sample is one instant-vector sample: a label set and a [timestamp, value]
// pair where the value is encoded as a string.
type Sample struct {
	Metric map[string]string `json:"metric"`
	Value  []json.RawMessage `json:"value"`
}

// Query executes an instant query and returns the decoded response.
func (c *Client) Query(ctx context.Context, query string) (*QueryResponse, error) {
	u := c.baseURL + queryPath + "?query=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("promql: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authHeader != nil {
		if h := c.authHeader(); h != "" {
			req.Header.Set("Authorization", h)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("promql: executing query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("promql: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("promql: query returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var qr QueryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, fmt.Errorf("promql: decoding response: %w", err)
	}
	if qr.Status != "success" {
		return nil, fmt.Errorf("promql: query status %q", qr.Status)
	}
	return &qr, nil
}

// ExtractValue returns the scalar value of the first sample in the response.
// Extraction never fails: an empty result set, a malformed value pair, or an
// unparsable number all degrade to 0.0 with a logged warning, so one absent
// series cannot abort a metric summary.
func (c *Client) ExtractValue(resp *QueryResponse) float64 {
	if resp == nil || len(resp.Data.Result) == 0 {
		c.logger.Warn("prometheus query returned no samples, using 0.0")
		return 0.0
	}
	value := resp.Data.Result[0].Value
	if len(value) < 2 {
		c.logger.Warn("prometheus sample has no value pair, using 0.0")
		return 0.0
	}

	var raw string
	if err := json.Unmarshal(value[1], &raw); err != nil {
		c.logger.Warn("prometheus sample value is not a string, using 0.0", "error", err)
		return 0.0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.logger.Warn("prometheus sample value is not numeric, using 0.0", "value", raw, "error", err)
		return 0.0
	}
	return v
}

func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
