package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/church-stats/attendance-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "attendance-cli",
	Short: "Weekly attendance report aggregation and trend charts",
	Long:  "Aggregates weekly spreadsheet attendance reports into per-region time series, renders trend charts, and serves uploads and rate queries.",
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
