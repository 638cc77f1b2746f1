package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/maildraft/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "maildraft",
	Short: "maildraft - Slack bot that drafts email replies",
	Long: `maildraft listens for Slack app mentions and replies with an email draft
written by a hosted language model (Amazon Bedrock or Gemini).

Mention the bot with the email you received and any notes about the reply:
  @maildraft Can you send me the Q3 numbers? -- tell them Friday`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareEnvironment,
}

func Execute() error {
	return rootCmd.Execute()
}

// secretsClientFactory is swapped in tests
var secretsClientFactory = func(cmd *cobra.Command) (appconfig.SecretsGetter, error) {
	awsCfg, err := appconfig.DefaultAWSConfig(cmd.Context())
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(awsCfg), nil
}

// prepareEnvironment loads .env and the optional Secrets Manager overlay before any command reads config
func prepareEnvironment(cmd *cobra.Command, args []string) error {
	path, err := appconfig.LoadDotEnv(".")
	if err != nil {
		return err
	}
	if path != "" {
		log.Printf("Loaded environment from %s", path)
	}

	secretID := strings.TrimSpace(os.Getenv(appconfig.EnvSecretID))
	if secretID == "" {
		return nil
	}
	client, err := secretsClientFactory(cmd)
	if err != nil {
		return err
	}
	names, err := appconfig.ApplySecret(cmd.Context(), client, secretID)
	if err != nil {
		return err
	}
	log.Printf("Applied %d variables from secret %s", len(names), secretID)
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(statsCmd)
}
