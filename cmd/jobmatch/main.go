// Package main is the jobmatch CLI: the HTTP API server plus one-shot recommend and ingest commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagEnv    string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "jobmatch",
	Short: "Job recommendation engine",
	Long: "jobmatch ranks job postings from a local vector index and external job boards " +
		"against a candidate profile.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "",
		"Environment name: selects config/<env>.yaml and the logger profile (default: $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Explicit config file path (overrides --env lookup)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
