package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/database"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/repository"
)

func newAuditCmd() *cobra.Command {
	var (
		service string
		limit   int
		summary bool
		since   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent inferences from the audit database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.AuditEnabled() {
				return fmt.Errorf("DATABASE_URL is required")
			}
			switch domain.Service(service) {
			case "", domain.ServiceFaceMatch, domain.ServiceLiveness:
			default:
				return fmt.Errorf("invalid service: %s (use: %s, %s)", service, domain.ServiceFaceMatch, domain.ServiceLiveness)
			}

			pool, err := database.NewPool(cmd.Context(), database.DefaultPoolConfig(cfg.DatabaseURL))
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := repository.NewInferenceRepository(pool)
			out := cmd.OutOrStdout()

			if summary {
				summaries, err := repo.Summarize(cmd.Context(), time.Now().Add(-since))
				if err != nil {
					return err
				}
				return printSummaries(out, summaries)
			}

			inferences, err := repo.ListRecent(cmd.Context(), domain.Service(service), limit)
			if err != nil {
				return err
			}

			if opts.JSON {
				enc := json.NewEncoder(out)
				for _, inf := range inferences {
					if err := enc.Encode(inf); err != nil {
						return err
					}
				}
				return nil
			}

			if len(inferences) == 0 {
				fmt.Fprintln(out, "No inferences recorded.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "CREATED\tSERVICE\tSTATUS\tSCORE\tLATENCY\tREQUEST ID")
			for _, inf := range inferences {
				fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%dms\t%s\n",
					inf.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					inf.Service, inf.Status, inf.Score, inf.LatencyMs, inf.RequestID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Only show one service (face_match, liveness)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")
	cmd.Flags().BoolVar(&summary, "summary", false, "Show counts and latencies per service and status")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Summary window")
	return cmd
}

func printSummaries(out io.Writer, summaries []domain.InferenceSummary) error {
	if opts.JSON {
		enc := json.NewEncoder(out)
		for _, s := range summaries {
			if err := enc.Encode(s); err != nil {
				return err
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tSTATUS\tCOUNT\tAVG SCORE\tAVG LATENCY\tP99 LATENCY")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%.0fms\t%.0fms\n",
			s.Service, s.Status, s.Count, s.AvgScore, s.AvgLatencyMs, s.P99LatencyMs)
	}
	return w.Flush()
}
