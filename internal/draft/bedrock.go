package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel/attribute"
)

const anthropicVersion = "bedrock-2023-05-31"

// modelInvoker is the subset of bedrockruntime.Client used for drafting
type modelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// ChatMessage represents a chat message with role and content
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the Anthropic messages payload accepted by Bedrock
type ChatRequest struct {
	Messages         []ChatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	Temperature      float64       `json:"temperature"`
	AnthropicVersion string        `json:"anthropic_version,omitempty"`
	System           string        `json:"system,omitempty"`
}

// ChatResponse represents the response from chat models
type ChatResponse struct {
	Content    []ChatContent `json:"content"`
	StopReason string        `json:"stop_reason,omitempty"`
	Usage      ChatUsage     `json:"usage,omitempty"`
}

// ChatContent represents the content in chat response
type ChatContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChatUsage represents token usage information
type ChatUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// BedrockGenerator drafts emails with an Anthropic model hosted on Amazon Bedrock
type BedrockGenerator struct {
	client  modelInvoker
	modelID string
	opts    Options
}

// NewBedrockGenerator creates a Bedrock-backed generator
func NewBedrockGenerator(awsConfig aws.Config, modelID string, opts Options) *BedrockGenerator {
	return newBedrockGenerator(bedrockruntime.NewFromConfig(awsConfig), modelID, opts)
}

func newBedrockGenerator(client modelInvoker, modelID string, opts Options) *BedrockGenerator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	return &BedrockGenerator{
		client:  client,
		modelID: modelID,
		opts:    opts,
	}
}

// ModelID returns the Bedrock model in use
func (g *BedrockGenerator) ModelID() string { return g.modelID }

// Draft implements Generator
func (g *BedrockGenerator) Draft(ctx context.Context, instruction string) (text string, err error) {
	ctx, span := draftTracer.Start(ctx, "draft.generate")
	defer span.End()
	attrs := []attribute.KeyValue{
		attribute.String("draft.provider", "bedrock"),
		attribute.String("draft.model", g.modelID),
	}
	span.SetAttributes(attrs...)
	start := time.Now()
	defer func() { recordDraft(ctx, span, attrs, time.Since(start), err) }()

	prompt := BuildPrompt(instruction, g.opts.SignerName)
	request := ChatRequest{
		Messages:         []ChatMessage{{Role: "user", Content: prompt.User}},
		MaxTokens:        g.opts.MaxTokens,
		Temperature:      g.opts.Temperature,
		AnthropicVersion: anthropicVersion,
		System:           prompt.System,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("failed to invoke bedrock model %s (%s): %w", g.modelID, apiErr.ErrorCode(), err)
		}
		return "", fmt.Errorf("failed to invoke bedrock model %s: %w", g.modelID, err)
	}

	var response ChatResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var parts []string
	for _, c := range response.Content {
		if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
			parts = append(parts, c.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text content in response")
	}

	span.SetAttributes(
		attribute.Int("draft.tokens.input", response.Usage.InputTokens),
		attribute.Int("draft.tokens.output", response.Usage.OutputTokens),
	)
	return strings.Join(parts, "\n"), nil
}
