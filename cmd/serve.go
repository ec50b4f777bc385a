package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/internal/dataset"
	"github.com/findmydaycare/daycare-server/internal/search"
	"github.com/findmydaycare/daycare-server/internal/server"
	"github.com/findmydaycare/daycare-server/internal/shortlist"
	"github.com/findmydaycare/daycare-server/pkg/distancematrix"
	"github.com/findmydaycare/daycare-server/pkg/geocode"
	"github.com/findmydaycare/daycare-server/pkg/sendgrid"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the daycare search HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		geocoder := geocode.NewClient(cfg.Google.APIKey)
		travel := distancematrix.NewClient(cfg.Google.APIKey)
		mailer := sendgrid.NewClient(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
		loader := dataset.NewLoader(cfg.Data.Dir)

		// Warn early when no snapshot exists; searches would 500 until one
		// is fetched.
		if _, err := loader.LatestSnapshot(); err != nil {
			zap.L().Warn("no dataset snapshot found, run fetch first", zap.String("dir", cfg.Data.Dir))
		}

		srv := server.New(cfg.Server,
			search.NewService(geocoder, travel, loader),
			shortlist.NewService(mailer),
		)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
