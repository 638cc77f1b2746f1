package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// EnvSecretID names the Secrets Manager secret overlaid onto the environment
const EnvSecretID = "MAILDRAFT_SECRET_ID"

// SecretsGetter is the subset of the Secrets Manager client used here
type SecretsGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ApplySecret fetches a JSON secret of NAME -> value pairs and exports every
// name not already present in the environment. It returns the names it set.
func ApplySecret(ctx context.Context, client SecretsGetter, secretID string) ([]string, error) {
	if client == nil {
		return nil, fmt.Errorf("secrets manager client is nil")
	}
	secretID = strings.TrimSpace(secretID)
	if secretID == "" {
		return nil, fmt.Errorf("secret id cannot be empty")
	}

	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", secretID, err)
	}
	if out == nil || out.SecretString == nil {
		return nil, fmt.Errorf("secret %s has no string value", secretID)
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &values); err != nil {
		return nil, fmt.Errorf("secret %s is not a JSON object of strings: %w", secretID, err)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var applied []string
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if current, ok := os.LookupEnv(key); ok && current != "" {
			continue
		}
		if err := os.Setenv(key, values[key]); err != nil {
			return applied, fmt.Errorf("failed to set %s: %w", key, err)
		}
		applied = append(applied, key)
	}
	return applied, nil
}
