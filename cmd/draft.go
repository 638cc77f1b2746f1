package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/maildraft/internal/config"
	"github.com/ca-srg/maildraft/internal/draft"
)

// generatorFactory is swapped in tests
var generatorFactory = func(ctx context.Context, cfg *appconfig.Config) (draft.Generator, error) {
	return draft.New(ctx, cfg)
}

var draftCmd = &cobra.Command{
	Use:   "draft [text...]",
	Short: "Draft one email reply from the command line",
	Long: `Draft an email reply without going through Slack. The instruction is taken
from the arguments, or from stdin when no arguments are given.

Examples:
  maildraft draft "Can we move the review to Thursday? -- say yes"
  pbpaste | maildraft draft`,
	RunE: runDraft,
}

func runDraft(cmd *cobra.Command, args []string) error {
	instruction := strings.TrimSpace(strings.Join(args, " "))
	if instruction == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		instruction = strings.TrimSpace(string(data))
	}
	if instruction == "" {
		return fmt.Errorf("no instruction given: pass text as arguments or on stdin")
	}

	cfg, err := appconfig.LoadDraft()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	generator, err := generatorFactory(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create draft generator: %w", err)
	}

	logger := log.New(os.Stderr, "maildraft ", log.LstdFlags)
	store := openUsageStore(cfg, logger)
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	text, err := generator.Draft(cmd.Context(), instruction)
	recordCLIUsage(cmd.Context(), store, err, logger)
	if err != nil {
		return fmt.Errorf("drafting email: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
