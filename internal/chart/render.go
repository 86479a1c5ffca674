package chart

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/church-stats/attendance-cli/internal/report"
)

// RenderRegion writes the attendance and burden charts for one region scope
// into dir, plus a pair per sub-district when the region is concrete.
// Individual chart failures are logged and skipped.
func RenderRegion(corpus *report.Corpus, region, dir string) {
	ts := report.BuildTimeSeries(corpus, region)
	if ts.Empty() {
		zap.L().Warn("chart: no data for scope", zap.String("region", region))
		return
	}
	writePair(region, ts, dir, region)

	if region == report.ScopeAll {
		return
	}
	for _, sub := range corpus.Subregions(region) {
		subTS := report.BuildSubregionTimeSeries(corpus, region, sub)
		if subTS.Empty() {
			continue
		}
		writePair(region+" - "+sub, subTS, dir, region+"_"+sub)
	}
}

func writePair(scope string, ts *report.TimeSeries, dir, stem string) {
	if ok, err := Attendance(scope+" - 召會生活人數", ts, filepath.Join(dir, stem+"_attendance.png")); err != nil {
		zap.L().Error("chart: attendance render failed", zap.String("scope", scope), zap.Error(err))
	} else if !ok {
		zap.L().Warn("chart: no attendance columns to plot", zap.String("scope", scope))
	}

	if ok, err := Burden(scope+" - 負擔領受程度", ts, filepath.Join(dir, stem+"_burden.png")); err != nil {
		zap.L().Error("chart: burden render failed", zap.String("scope", scope), zap.Error(err))
	} else if !ok {
		zap.L().Warn("chart: no burden columns to plot", zap.String("scope", scope))
	}
}
