package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/config"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/domain"
)

// globalOptions holds flags shared by every subcommand
type globalOptions struct {
	JSON    bool
	Verbose bool
}

var (
	opts   globalOptions
	cfg    *config.Config
	logger *slog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kycctl",
		Short:         "Score KYC images without running the HTTP services",
		Version:       handler.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			// stdout carries the scores
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Print results as JSON lines")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug output to stderr")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newMatchCmd(), newLivenessCmd(), newAuditCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	// Ctrl+C cancels in-flight fetches and model calls
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// scoreLine is one printed result
type scoreLine struct {
	Ref    string              `json:"ref"`
	Score  float64             `json:"score"`
	Status domain.ResultStatus `json:"status"`
	Method domain.ScoreMethod  `json:"method,omitempty"`
}

func newScoreLine(ref string, result domain.Result) scoreLine {
	return scoreLine{
		Ref:    ref,
		Score:  result.Value(),
		Status: result.Status,
		Method: result.Method,
	}
}

func printScores(w io.Writer, lines []scoreLine) error {
	if opts.JSON {
		enc := json.NewEncoder(w)
		for _, line := range lines {
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "REF\tSCORE\tSTATUS\tMETHOD")
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\n", line.Ref, line.Score, line.Status, line.Method)
	}
	return tw.Flush()
}
