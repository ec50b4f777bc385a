package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/findmydaycare/daycare-server/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "daycare-server",
	Short: "Licensed daycare search service for Toronto",
	Long:  "Serves the daycare search API, fetches the city's licensed child-care dataset, and enriches it with Google Places details.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
