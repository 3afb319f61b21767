// bedrock.go implements the reasoning backend over AWS Bedrock for clusters
// that keep LLM traffic inside AWS. Bedrock serves Anthropic models with the
// native Messages request format, so the wire types mirror claude.go.
package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/shreyabiradar07/causa/internal/model"
	"github.com/shreyabiradar07/causa/internal/reasoner/prompt"
)

// BedrockClient is the slice of the Bedrock runtime API the backend uses,
// allowing test injection of a mock.
type BedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockConfig holds configuration for the Bedrock backend.
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float64
}

// BedrockBackend implements all three reasoning capabilities via Bedrock
// InvokeModel.
type BedrockBackend struct {
	client   BedrockClient
	cfg      BedrockConfig
	prompter *prompt.Builder
	logger   *slog.Logger
}

// NewBedrockBackend creates a Bedrock-backed reasoner using the default AWS
// credential chain (IRSA-compatible).
func NewBedrockBackend(ctx context.Context, cfg BedrockConfig, prompter *prompt.Builder, logger *slog.Logger) (*BedrockBackend, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("bedrock: region must not be empty")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("bedrock: loading AWS config: %w", err)
	}
	return newBedrockBackendWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg, prompter, logger)
}

// newBedrockBackendWithClient creates a BedrockBackend with an injected
// client (for testing).
func newBedrockBackendWithClient(client BedrockClient, cfg BedrockConfig, prompter *prompt.Builder, logger *slog.Logger) (*BedrockBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("bedrock: client must not be nil")
	}
	if cfg.ModelID == "" {
		return nil, fmt.Errorf("bedrock: modelID must not be empty")
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("bedrock: maxTokens must be > 0, got %d", cfg.MaxTokens)
	}
	if prompter == nil {
		return nil, fmt.Errorf("bedrock: prompter must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BedrockBackend{client: client, cfg: cfg, prompter: prompter, logger: logger}, nil
}

// Name returns the backend identifier. It matches the config selector so
// startup logs and metric labels agree.
func (b *BedrockBackend) Name() string { return "bedrock" }

func (b *BedrockBackend) DetectAnomaly(ctx context.Context, fullContext string) (string, error) {
	return b.complete(ctx, b.prompter.DetectorSystem(), fullContext)
}

func (b *BedrockBackend) AnalyzeRootCause(ctx context.Context, anomalyType, fullContext string) (string, error) {
	return b.complete(ctx, "", b.prompter.Analyst(anomalyType, fullContext))
}

func (b *BedrockBackend) ValidateAndFormat(ctx context.Context, rcaOutput, fullContext string) (*model.RcaReport, error) {
	raw, err := b.complete(ctx, "", b.prompter.Validator(rcaOutput, fullContext))
	if err != nil {
		return nil, err
	}
	report, err := ParseValidatorResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("bedrock: %w", err)
	}
	return report, nil
}

// bedrockAnthropicRequest is the InvokeModel body for Anthropic models.
type bedrockAnthropicRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

// bedrockAnthropicResponse mirrors the Claude response format returned by
// InvokeModel for Anthropic models.
type bedrockAnthropicResponse struct {
	Content []claudeContentBlock `json:"content"`
	Usage   claudeUsage          `json:"usage"`
}

func (b *BedrockBackend) complete(ctx context.Context, system, user string) (string, error) {
	reqBody := bedrockAnthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        b.cfg.MaxTokens,
		Temperature:      b.cfg.Temperature,
		System:           system,
		Messages:         []claudeMessage{{Role: "user", Content: user}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("bedrock: marshaling request: %w", err)
	}

	b.logger.Info("sending request to Bedrock", "model_id", b.cfg.ModelID)

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.cfg.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        bodyBytes,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: invoking model: %w", err)
	}

	var resp bedrockAnthropicResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return "", fmt.Errorf("bedrock: parsing response JSON: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	b.logger.Info("received Bedrock response",
		"model_id", b.cfg.ModelID,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return text, nil
}

var _ Backend = (*BedrockBackend)(nil)
