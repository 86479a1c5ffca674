package report

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SummaryPolicy classifies rows whose identifying columns carry a
// total/subtotal keyword. Such rows restate underlying data and would
// double-count it, so they are dropped before any aggregation.
type SummaryPolicy struct {
	Keywords []string
}

// DefaultSummaryPolicy matches the subtotal markers the exporter emits.
func DefaultSummaryPolicy() SummaryPolicy {
	return SummaryPolicy{Keywords: []string{"總計", "合計", "小計", "總數", "合共", "總和"}}
}

// IsSummary reports whether any identifying column contains a keyword.
func (p SummaryPolicy) IsSummary(r Row) bool {
	for _, v := range []string{r.Facility, r.Region, r.Subregion} {
		for _, kw := range p.Keywords {
			if kw != "" && strings.Contains(v, kw) {
				return true
			}
		}
	}
	return false
}

// Aggregate builds the corpus from every report file in dir using the
// default summary policy.
func Aggregate(dir string) (*Corpus, error) {
	return AggregateWith(dir, DefaultSummaryPolicy())
}

// AggregateWith discovers all spreadsheet-like files in dir, loads each,
// concatenates the survivors, strips summary rows, sorts by week ascending
// and deduplicates on (facility, region, subregion, week) keeping the first
// occurrence. Per-file failures are logged and skipped; an empty directory
// or zero usable files is fatal.
func AggregateWith(dir string, policy SummaryPolicy) (*Corpus, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.xls*"))
	if err != nil {
		return nil, eris.Wrapf(err, "report: list files in %s", dir)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, eris.Errorf("report: no report files found in %s", dir)
	}

	var rows []Row
	colSeen := make(map[string]bool)
	processed := 0
	for _, path := range paths {
		fr, err := Load(path)
		if err != nil {
			zap.L().Warn("report: skipping file",
				zap.String("file", filepath.Base(path)),
				zap.Error(err),
			)
			continue
		}
		rows = append(rows, fr.Rows...)
		for _, c := range fr.Columns {
			colSeen[c] = true
		}
		processed++
	}
	if processed == 0 {
		return nil, eris.New("report: no usable report data")
	}

	filtered := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !policy.IsSummary(r) {
			filtered = append(filtered, r)
		}
	}

	// Stable sort: rows within one week keep file order, so dedup below
	// keeps the earliest ingested occurrence.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].WeekEnd.Before(filtered[j].WeekEnd)
	})

	seen := make(map[string]bool, len(filtered))
	deduped := make([]Row, 0, len(filtered))
	for _, r := range filtered {
		k := r.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, r)
	}

	var columns []string
	for _, m := range MetricColumns {
		if colSeen[m] {
			columns = append(columns, m)
		}
	}

	corpus := &Corpus{Rows: deduped, Columns: columns}

	weeks := corpus.Weeks()
	formatted := make([]string, len(weeks))
	for i, w := range weeks {
		formatted[i] = w.Format("2006/01/02")
	}
	zap.L().Info("report: corpus built",
		zap.Int("files_used", processed),
		zap.Int("files_found", len(paths)),
		zap.Int("rows", len(corpus.Rows)),
		zap.Int("weeks", len(weeks)),
		zap.Strings("week_dates", formatted),
	)

	return corpus, nil
}
