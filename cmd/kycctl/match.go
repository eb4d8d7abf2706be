package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/face"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/server"
)

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <ic-front> <selfie>",
		Short: "Compare an identity document photo with a selfie",
		Long:  "Both references accept URLs, absolute paths and paths relative to IMAGE_BASE_DIRS.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			backend, err := face.NewFaceBackend(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to create face backend: %w", err)
			}
			defer backend.Close()

			svc := server.NewFaceMatchService(face.NewImageResolver(cfg, logger), backend, logger)

			result, err := svc.Match(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			return printScores(cmd.OutOrStdout(), []scoreLine{newScoreLine(args[0]+" -> "+args[1], result)})
		},
	}
}
