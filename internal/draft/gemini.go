package draft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

// contentGenerator is the subset of genai.Models used for drafting
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator drafts emails with a Google Gemini model
type GeminiGenerator struct {
	models contentGenerator
	model  string
	opts   Options
}

// NewGeminiGenerator creates a Gemini-backed generator using the Gemini API backend
func NewGeminiGenerator(ctx context.Context, apiKey, model string, opts Options) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newGeminiGenerator(client.Models, model, opts), nil
}

func newGeminiGenerator(models contentGenerator, model string, opts Options) *GeminiGenerator {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	return &GeminiGenerator{models: models, model: model, opts: opts}
}

// Draft implements Generator
func (g *GeminiGenerator) Draft(ctx context.Context, instruction string) (text string, err error) {
	ctx, span := draftTracer.Start(ctx, "draft.generate")
	defer span.End()
	attrs := []attribute.KeyValue{
		attribute.String("draft.provider", "gemini"),
		attribute.String("draft.model", g.model),
	}
	span.SetAttributes(attrs...)
	start := time.Now()
	defer func() { recordDraft(ctx, span, attrs, time.Since(start), err) }()

	prompt := BuildPrompt(instruction, g.opts.SignerName)
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.opts.Temperature)),
		MaxOutputTokens:   int32(g.opts.MaxTokens),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt.User), genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with %s: %w", g.model, err)
	}
	if resp == nil {
		return "", fmt.Errorf("empty response from %s", g.model)
	}

	text = strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}
	return text, nil
}
