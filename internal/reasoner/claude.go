// claude.go implements the reasoning backend against the Anthropic Messages
// API. One HTTP round trip per capability call; the API key is read from a
// Kubernetes Secret on every call so rotation needs no restart.
package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shreyabiradar07/causa/internal/model"
	"github.com/shreyabiradar07/causa/internal/reasoner/prompt"
)

const (
	defaultClaudeAPIURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion    = "2023-06-01"
	claudeHTTPTimeout   = 120 * time.Second
)

// ClaudeConfig holds configuration for the Claude backend.
type ClaudeConfig struct {
	// Model is the default model for all capabilities.
	Model string
	// DetectorModel, AnalystModel, and ValidatorModel override Model for
	// their capability when non-empty. Detection typically runs on a
	// smaller, cheaper model than the analysis steps.
	DetectorModel  string
	AnalystModel   string
	ValidatorModel string

	MaxTokens   int
	Temperature float64
	APIKeyRef   SecretRef
	// APIURL overrides the default Anthropic endpoint (for testing).
	APIURL string
}

// ClaudeBackend implements all three reasoning capabilities over the
// Anthropic Messages API.
type ClaudeBackend struct {
	cfg          ClaudeConfig
	apiURL       string
	secretReader SecretReader
	httpClient   *http.Client
	prompter     *prompt.Builder
	logger       *slog.Logger
}

// NewClaudeBackend creates a Claude-backed reasoner.
func NewClaudeBackend(cfg ClaudeConfig, secretReader SecretReader, prompter *prompt.Builder, logger *slog.Logger) (*ClaudeBackend, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("claude: model must not be empty")
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("claude: maxTokens must be > 0, got %d", cfg.MaxTokens)
	}
	if err := cfg.APIKeyRef.Validate(); err != nil {
		return nil, fmt.Errorf("claude: apiKeyRef: %w", err)
	}
	if secretReader == nil {
		return nil, fmt.Errorf("claude: secretReader must not be nil")
	}
	if prompter == nil {
		return nil, fmt.Errorf("claude: prompter must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultClaudeAPIURL
	}

	return &ClaudeBackend{
		cfg:          cfg,
		apiURL:       apiURL,
		secretReader: secretReader,
		httpClient:   &http.Client{Timeout: claudeHTTPTimeout},
		prompter:     prompter,
		logger:       logger,
	}, nil
}

// Name returns the backend identifier.
func (c *ClaudeBackend) Name() string { return "claude" }

// DetectAnomaly asks the detection model to classify the context.
func (c *ClaudeBackend) DetectAnomaly(ctx context.Context, fullContext string) (string, error) {
	return c.complete(ctx, c.modelFor(c.cfg.DetectorModel), c.prompter.DetectorSystem(), fullContext)
}

// AnalyzeRootCause asks the analysis model for a reasoned root cause.
func (c *ClaudeBackend) AnalyzeRootCause(ctx context.Context, anomalyType, fullContext string) (string, error) {
	return c.complete(ctx, c.modelFor(c.cfg.AnalystModel), "", c.prompter.Analyst(anomalyType, fullContext))
}

// ValidateAndFormat asks the validation model to structure the analysis and
// parses its JSON reply into a report.
func (c *ClaudeBackend) ValidateAndFormat(ctx context.Context, rcaOutput, fullContext string) (*model.RcaReport, error) {
	raw, err := c.complete(ctx, c.modelFor(c.cfg.ValidatorModel), "", c.prompter.Validator(rcaOutput, fullContext))
	if err != nil {
		return nil, err
	}
	report, err := ParseValidatorResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("claude: %w", err)
	}
	return report, nil
}

func (c *ClaudeBackend) modelFor(override string) string {
	if override != "" {
		return override
	}
	return c.cfg.Model
}

// claudeRequest is the Anthropic Messages API request body.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the Anthropic Messages API response body.
type claudeResponse struct {
	ID      string               `json:"id"`
	Content []claudeContentBlock `json:"content"`
	Usage   claudeUsage          `json:"usage"`
	Error   *claudeError         `json:"error,omitempty"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// complete performs one Messages API call and returns the concatenated text
// content of the reply.
func (c *ClaudeBackend) complete(ctx context.Context, modelName, system, user string) (string, error) {
	apiKey, err := c.secretReader.ReadSecret(ctx, c.cfg.APIKeyRef.Namespace, c.cfg.APIKeyRef.Name, c.cfg.APIKeyRef.Key)
	if err != nil {
		return "", fmt.Errorf("claude: reading API key: %w", err)
	}

	reqBody := claudeRequest{
		Model:       modelName,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		System:      system,
		Messages:    []claudeMessage{{Role: "user", Content: user}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("claude: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("claude: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	c.logger.Info("sending request to Claude", "model", modelName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude: sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1MB limit
	if err != nil {
		return "", fmt.Errorf("claude: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claude: API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(respBody, &claudeResp); err != nil {
		return "", fmt.Errorf("claude: parsing response JSON: %w", err)
	}
	if claudeResp.Error != nil {
		return "", fmt.Errorf("claude: API error: %s: %s", claudeResp.Error.Type, claudeResp.Error.Message)
	}

	var text string
	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	c.logger.Info("received Claude response",
		"model", modelName,
		"input_tokens", claudeResp.Usage.InputTokens,
		"output_tokens", claudeResp.Usage.OutputTokens,
	)
	return text, nil
}

var _ Backend = (*ClaudeBackend)(nil)
