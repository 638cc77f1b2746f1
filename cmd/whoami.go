package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/maildraft/internal/config"
)

type authTester interface {
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
}

// authTesterFactory is swapped in tests
var authTesterFactory = func(token string) authTester {
	return slack.New(token)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the bot user id for SLACK_BOT_USER_ID",
	Long:  `Call Slack auth.test with SLACK_BOT_TOKEN and print the user id the bot is mentioned as.`,
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	token := strings.TrimSpace(os.Getenv(appconfig.EnvSlackBotToken))
	if token == "" {
		return fmt.Errorf("missing required environment variables: %s", appconfig.EnvSlackBotToken)
	}

	resp, err := authTesterFactory(token).AuthTestContext(cmd.Context())
	if err != nil {
		return fmt.Errorf("auth.test failed: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.UserID)
	return err
}
