package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/church-stats/attendance-cli/internal/report"
	"github.com/church-stats/attendance-cli/internal/store"
)

var (
	ratesRegion string
	ratesBase   float64
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print attendance rates for a region from the latest snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// An explicit --base 0 is meaningful (it makes every rate
		// undefined), so the config fallback applies only when the flag
		// was not set at all.
		base := resolveBase(cmd.Flags().Changed("base"), ratesBase, cfg.Rates.Base)

		st, err := store.NewSQLite(cfg.Snapshot.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snap, err := st.Latest(ctx)
		if eris.Is(err, store.ErrNoSnapshot) {
			fmt.Println("no analysis has run yet; run `attendance-cli run` first")
			return nil
		}
		if err != nil {
			return err
		}

		ts := report.BuildTimeSeries(snap.Corpus, ratesRegion)
		if ts.Empty() {
			fmt.Printf("no data for region %s\n", ratesRegion)
			return nil
		}

		rates := report.ComputeRates(ts, base)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "metric\tlatest\taverage\tlatest rate\taverage rate")
		for _, r := range rates {
			fmt.Fprintf(w, "%s\t%d\t%.1f\t%s\t%s\n",
				r.Metric, r.Latest, r.Average, fmtRate(r.LatestRate), fmtRate(r.AverageRate))
		}
		return w.Flush()
	},
}

func resolveBase(flagSet bool, flag, fallback float64) float64 {
	if flagSet {
		return flag
	}
	return fallback
}

func fmtRate(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v)
}

func init() {
	ratesCmd.Flags().StringVar(&ratesRegion, "region", report.ScopeAll, "region name, or 總計 for every region combined")
	ratesCmd.Flags().Float64Var(&ratesBase, "base", 0, "base number rates are computed against (default from config)")
	rootCmd.AddCommand(ratesCmd)
}
