package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/jobmatch/internal/transport/chi"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank postings for a candidate profile",
	Long: "Reads a candidate profile JSON file (the same shape as the profile field of " +
		"POST /api/v1/recommendations) and prints the ranked recommendation as JSON.",
	RunE: runRecommend,
}

var (
	recommendProfile  string
	recommendTopK     int
	recommendMinLocal int
)

func init() {
	recommendCmd.Flags().StringVarP(&recommendProfile, "profile", "p", "", "Path to candidate profile JSON file (required)")
	recommendCmd.Flags().IntVarP(&recommendTopK, "top-k", "k", 0, "Number of results (default: recommend.default_top_k)")
	recommendCmd.Flags().IntVar(&recommendMinLocal, "minimum-local", 0,
		"Local postings required before external providers are skipped (default: recommend.minimum_local_count)")

	if err := recommendCmd.MarkFlagRequired("profile"); err != nil {
		panic(fmt.Sprintf("failed to mark profile flag as required: %v", err))
	}

	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(filepath.Clean(recommendProfile))
	if err != nil {
		return fmt.Errorf("failed to read profile file %s: %w", recommendProfile, err)
	}
	var in chiTransport.Profile
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}
	profile, err := in.ToDomain()
	if err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	topK := recommendTopK
	if topK == 0 {
		topK = a.cfg.Recommend.DefaultTopK
	}
	rec, err := a.recommend.Recommend(ctx, profile, topK, recommendMinLocal)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	a.logger.Debug("Recommendation computed", zap.String("id", rec.ID), zap.Int("results", len(rec.Results)))

	out, err := json.MarshalIndent(chiTransport.NewRecommendationResponse(rec), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
