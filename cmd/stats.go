package cmd

import (
	"context"
	"fmt"
	"log"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appconfig "github.com/ca-srg/maildraft/internal/config"
	"github.com/ca-srg/maildraft/internal/usage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cumulative draft counts from the local stats database",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.LoadDraft()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := usage.Open(cfg.StatsDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	totals, err := store.AllTotals(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tOK\tERRORS")
	for _, src := range usage.Sources {
		t := totals[src]
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", src, t.OK, t.Errors)
	}
	return w.Flush()
}

// openUsageStore opens the stats database when enabled. Failures are logged
// and yield a nil store so drafting keeps working without local stats.
func openUsageStore(cfg *appconfig.Config, logger *log.Logger) *usage.Store {
	if !cfg.StatsEnabled {
		return nil
	}
	store, err := usage.Open(cfg.StatsDBPath)
	if err != nil {
		logger.Printf("event=stats_open status=error err=%v", err)
		return nil
	}
	return store
}

func recordCLIUsage(ctx context.Context, store *usage.Store, draftErr error, logger *log.Logger) {
	if store == nil {
		return
	}
	outcome := usage.OutcomeOK
	if draftErr != nil {
		outcome = usage.OutcomeError
	}
	if err := store.Record(ctx, usage.SourceCLI, outcome); err != nil {
		logger.Printf("event=usage_record status=error err=%v", err)
	}
}
