package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/face"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/service"
)

func newLivenessCmd() *cobra.Command {
	var failFast bool

	cmd := &cobra.Command{
		Use:   "liveness <selfie>...",
		Short: "Score one or more selfies for liveness",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := face.NewLivenessBackend(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create liveness backend: %w", err)
			}
			defer backend.Close()

			svc := service.NewLivenessService(face.NewImageResolver(cfg, logger), backend.Model, backend.Sharpness, logger)
			logger.Debug("liveness mode", "mode", svc.Mode())

			var bar *progressbar.ProgressBar
			if len(args) > 1 {
				bar = progressbar.NewOptions(len(args),
					progressbar.OptionSetDescription("scoring selfies"),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}

			lines := make([]scoreLine, 0, len(args))
			var failed int
			for _, ref := range args {
				result, err := svc.Score(ctx, ref)
				if err != nil {
					if failFast || ctx.Err() != nil {
						return fmt.Errorf("%s: %w", ref, err)
					}
					failed++
					logger.Error("liveness failed", "ref", ref, "error", err)
				} else {
					lines = append(lines, newScoreLine(ref, result))
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			if bar != nil {
				_ = bar.Finish()
			}

			if err := printScores(cmd.OutOrStdout(), lines); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d selfies failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first selfie that fails")
	return cmd
}
