package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/church-stats/attendance-cli/internal/chart"
	"github.com/church-stats/attendance-cli/internal/report"
	"github.com/church-stats/attendance-cli/internal/store"
)

var (
	runReportsDir string
	runChartsDir  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Aggregate report files, save a snapshot, and render trend charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		reportsDir := runReportsDir
		if reportsDir == "" {
			reportsDir = cfg.Reports.Dir
		}
		chartsDir := runChartsDir
		if chartsDir == "" {
			chartsDir = cfg.Charts.Dir
		}

		ctx := cmd.Context()
		st, err := store.NewSQLite(cfg.Snapshot.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		_, err = refreshAnalysis(ctx, st, reportsDir, chartsDir)
		return err
	},
}

// refreshAnalysis is one aggregation run: read every report file, persist
// the corpus snapshot, then render charts for the combined scope and every
// region. Shared by the run command and the upload endpoint. Chart failures
// do not fail the run.
func refreshAnalysis(ctx context.Context, st store.Store, reportsDir, chartsDir string) (*report.Corpus, error) {
	corpus, err := report.Aggregate(reportsDir)
	if err != nil {
		return nil, err
	}

	if _, err := st.Save(ctx, corpus); err != nil {
		return nil, err
	}

	chart.RenderRegion(corpus, report.ScopeAll, chartsDir)
	for _, region := range corpus.Regions() {
		chart.RenderRegion(corpus, region, chartsDir)
	}

	zap.L().Info("analysis refreshed",
		zap.Int("rows", len(corpus.Rows)),
		zap.Int("regions", len(corpus.Regions())),
		zap.String("charts_dir", chartsDir),
	)
	return corpus, nil
}

func init() {
	runCmd.Flags().StringVar(&runReportsDir, "reports-dir", "", "report files directory (default from config)")
	runCmd.Flags().StringVar(&runChartsDir, "charts-dir", "", "chart output directory (default from config)")
	rootCmd.AddCommand(runCmd)
}
