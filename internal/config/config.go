package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ca-srg/maildraft/internal/types"
	env "github.com/netflix/go-env"
)

// Type alias for Config
type Config = types.Config

const (
	EnvSlackBotToken      = "SLACK_BOT_TOKEN"
	EnvSlackSigningSecret = "SLACK_SIGNING_SECRET"
	EnvSlackBotUserID     = "SLACK_BOT_USER_ID"
)

// RequiredEnv lists the credentials maildraft refuses to start without
var RequiredEnv = []string{EnvSlackBotToken, EnvSlackSigningSecret, EnvSlackBotUserID}

const (
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
)

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if missing := missingRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	config, err := parseEnviron()
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadDraft loads only what the draft generator needs; Slack credentials are not required.
func LoadDraft() (*Config, error) {
	config, err := parseEnviron()
	if err != nil {
		return nil, err
	}

	if err := validateDraftConfig(config); err != nil {
		return nil, fmt.Errorf("draft configuration validation failed: %w", err)
	}

	return config, nil
}

func parseEnviron() (*Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return &config, nil
}

func missingRequired() []string {
	var missing []string
	for _, key := range RequiredEnv {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	config.SlackBotToken = strings.TrimSpace(config.SlackBotToken)
	config.SlackSigningSecret = strings.TrimSpace(config.SlackSigningSecret)
	config.SlackBotUserID = strings.TrimSpace(config.SlackBotUserID)
	config.SlackAppToken = strings.TrimSpace(config.SlackAppToken)

	// An app-level token implies Socket Mode
	if config.SlackAppToken != "" {
		config.SlackSocketMode = true
	}
	if config.SlackSocketMode && config.SlackAppToken == "" {
		return fmt.Errorf("SLACK_APP_TOKEN is required when SLACK_SOCKET_MODE=true")
	}

	if config.ServerPort < 1 || config.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if config.ServerReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be greater than 0")
	}
	if config.ServerWriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if config.ServerIdleTimeout <= 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be greater than 0")
	}
	if config.ServerShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}

	if err := validateDraftConfig(config); err != nil {
		return fmt.Errorf("draft configuration validation failed: %w", err)
	}

	return nil
}

// validateDraftConfig validates generator-specific configuration
func validateDraftConfig(config *Config) error {
	config.DraftProvider = strings.ToLower(strings.TrimSpace(config.DraftProvider))
	if config.DraftProvider == "" {
		config.DraftProvider = ProviderBedrock
	}

	if config.DraftMaxTokens <= 0 {
		return fmt.Errorf("DRAFT_MAX_TOKENS must be greater than 0")
	}
	if config.DraftTemperature < 0 || config.DraftTemperature > 2 {
		return fmt.Errorf("DRAFT_TEMPERATURE must be between 0 and 2")
	}

	// Clamp retry attempts
	if config.DraftMaxAttempts < 1 {
		config.DraftMaxAttempts = 1
	}
	if config.DraftMaxAttempts > 10 {
		config.DraftMaxAttempts = 10
	}

	switch config.DraftProvider {
	case ProviderBedrock:
		if strings.TrimSpace(config.DraftModel) == "" {
			return fmt.Errorf("DRAFT_MODEL cannot be empty")
		}
		if strings.TrimSpace(config.BedrockRegion) == "" {
			return fmt.Errorf("BEDROCK_REGION cannot be empty")
		}
		if (config.BedrockAccessKeyID == "") != (config.BedrockSecretAccessKey == "") {
			return fmt.Errorf("BEDROCK_ACCESS_KEY_ID and BEDROCK_SECRET_ACCESS_KEY must be set together")
		}
	case ProviderGemini:
		if strings.TrimSpace(config.GeminiAPIKey) == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when DRAFT_PROVIDER=gemini")
		}
		if strings.TrimSpace(config.GeminiModel) == "" {
			return fmt.Errorf("GEMINI_MODEL cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported DRAFT_PROVIDER %q (expected %s or %s)", config.DraftProvider, ProviderBedrock, ProviderGemini)
	}

	return nil
}
