package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/internal/dataset"
	"github.com/findmydaycare/daycare-server/internal/enrich"
	"github.com/findmydaycare/daycare-server/pkg/places"
)

var enrichRefresh bool

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Look up Google Places details for the current snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		enricher := enrich.New(
			places.NewClient(cfg.Google.APIKey),
			dataset.NewLoader(cfg.Data.Dir),
			cfg.Data.Dir,
		)

		sum, err := enricher.Run(ctx, enrichRefresh)
		if err != nil {
			return err
		}

		zap.L().Info("enrich finished",
			zap.Int("facilities", sum.Facilities),
			zap.Int("high_confidence", sum.High),
			zap.Int("failed", sum.Failed),
		)
		return nil
	},
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichRefresh, "refresh", false, "re-look-up facilities that already have a high-confidence match")
	rootCmd.AddCommand(enrichCmd)
}
