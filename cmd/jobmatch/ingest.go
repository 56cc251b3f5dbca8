package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain/batch"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest PATH...",
	Short: "Load job postings into the local index",
	Long: "Reads JSON postings (a single object or an array per file; directories contribute their *.json files), " +
		"embeds them and upserts them into the local job index.",
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestReset bool

func init() {
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false,
		"Delete every indexed posting and drop the index before loading (rebuilds it with the current settings)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, paths []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if ingestReset {
		removed, err := a.index.Reset(ctx)
		if err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
		a.logger.Info("Job index reset", zap.Int("removed", removed))
	}

	results, err := a.ingest.IngestPaths(ctx, paths)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	for i := range results {
		r := &results[i]
		if r.Status() == batch.StatusError {
			a.logger.Warn("Posting not ingested",
				zap.String("id", r.ID()), zap.String("origin", r.Origin()), zap.Error(r.Err()))
		}
	}

	sum := batch.Summarize(results)
	fmt.Fprintf(cmd.OutOrStdout(), "ingested %d, skipped %d, failed %d\n", sum.OK, sum.Skipped, sum.Failed)
	if sum.Failed > 0 {
		return fmt.Errorf("%d postings failed", sum.Failed)
	}
	return nil
}
