// Package draft turns free-form instructions into email drafts using a hosted
// language model.
package draft

import (
	"context"
	"fmt"

	"github.com/ca-srg/maildraft/internal/config"
)

// Generator drafts an email from an instruction
type Generator interface {
	Draft(ctx context.Context, instruction string) (string, error)
}

// Options tune the completion request shared by every provider
type Options struct {
	MaxTokens   int
	Temperature float64
	SignerName  string
}

func optionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxTokens:   cfg.DraftMaxTokens,
		Temperature: cfg.DraftTemperature,
		SignerName:  cfg.DraftSignerName,
	}
}

// New builds the generator selected by DRAFT_PROVIDER
func New(ctx context.Context, cfg *config.Config) (Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil configuration")
	}

	switch cfg.DraftProvider {
	case config.ProviderBedrock, "":
		awsCfg, err := config.BedrockAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewBedrockGenerator(awsCfg, cfg.DraftModel, optionsFromConfig(cfg)), nil
	case config.ProviderGemini:
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, optionsFromConfig(cfg))
	default:
		return nil, fmt.Errorf("unsupported draft provider %q", cfg.DraftProvider)
	}
}
