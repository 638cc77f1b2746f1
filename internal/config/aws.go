package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// BedrockAWSConfig resolves the AWS configuration used by the Bedrock draft generator.
// Static credentials take precedence over the default provider chain when both
// BEDROCK_ACCESS_KEY_ID and BEDROCK_SECRET_ACCESS_KEY are set.
func BedrockAWSConfig(ctx context.Context, cfg *Config) (aws.Config, error) {
	if cfg == nil {
		return aws.Config{}, fmt.Errorf("nil configuration")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.BedrockRegion),
	}
	if cfg.DraftMaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.DraftMaxAttempts))
	}
	if cfg.BedrockAccessKeyID != "" && cfg.BedrockSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.BedrockAccessKeyID, cfg.BedrockSecretAccessKey, cfg.BedrockSessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return awsCfg, nil
}

// DefaultAWSConfig resolves AWS configuration from the standard environment
// and shared config files. It is used before Config itself can be loaded.
func DefaultAWSConfig(ctx context.Context) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return awsCfg, nil
}
