package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/teamforge/internal/config"
	"github.com/okian/teamforge/internal/loadgen"
)

func newXPLoadCmd() *cobra.Command {
	defaults := config.New()
	cfg := loadgen.Config{
		Weights:       defaults.ActivityWeights,
		DefaultWeight: defaults.DefaultActivityWeight,
	}
	var skipTotals bool

	cmd := &cobra.Command{
		Use:   "xp-load",
		Short: "Send synthetic XP events to a running server and verify the leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if skipTotals {
				cfg.Weights = nil
			}
			report, err := loadgen.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"generated":   report.Generated,
				"accepted":    report.Accepted,
				"duplicate":   report.Duplicate,
				"rejected":    report.Rejected,
				"failed":      report.Failed,
				"ranked":      report.Ranked,
				"duration_ms": report.Duration.Milliseconds(),
				"leaderboard": report.Leaderboard,
			})
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the server")
	cmd.Flags().IntVarP(&cfg.Events, "events", "e", 1000, "Number of events to send")
	cmd.Flags().IntVarP(&cfg.Participants, "participants", "p", 30, "Distinct participants")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", 16, "Concurrent submitters")
	cmd.Flags().IntVar(&cfg.TopN, "top", 10, "Leaderboard entries to fetch")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "Per-request timeout")
	cmd.Flags().DurationVar(&cfg.Settle, "settle", 30*time.Second, "How long to wait for queued events")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "Generator seed")
	cmd.Flags().BoolVar(&skipTotals, "skip-totals", false, "Skip the per-participant XP check, for servers with custom weights")
	return cmd
}
