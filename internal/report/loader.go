package report

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/church-stats/attendance-cli/internal/fetcher"
)

// FileReport is one normalized report file: every row stamped with the
// week-ending date resolved from the filename, projected to the canonical
// column set.
type FileReport struct {
	Path    string
	WeekEnd time.Time
	Columns []string // metric columns present in this file, canonical order
	Rows    []Row
}

// Load reads and normalizes a single report file. Errors here are per-file
// conditions (unparseable date, unreadable content, missing 大區 column);
// the aggregator logs them and moves on; they never abort a run.
func Load(path string) (*FileReport, error) {
	base := filepath.Base(path)

	weekEnd, ok := WeekEndDate(path)
	if !ok {
		return nil, eris.Errorf("report: no date in filename %q", base)
	}

	raw, strategy, err := fetcher.ReadTable(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: unreadable file %q", base)
	}
	if len(raw) < 1 {
		return nil, eris.Errorf("report: empty table in %q", base)
	}

	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.TrimSpace(h)
	}

	// First occurrence wins on duplicate headers.
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := colIdx[h]; !dup {
			colIdx[h] = i
		}
	}

	regionIdx, ok := colIdx[ColRegion]
	if !ok {
		return nil, eris.Errorf("report: missing required column %q in %q", ColRegion, base)
	}
	facilityIdx, hasFacility := colIdx[ColFacility]
	subregionIdx, hasSubregion := colIdx[ColSubregion]

	var columns []string
	for _, m := range MetricColumns {
		if _, present := colIdx[m]; present {
			columns = append(columns, m)
		}
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		region := strings.TrimSpace(cell(cells, regionIdx))
		// A header row duplicated as data repeats the column's own name.
		if region == ColRegion {
			continue
		}

		r := Row{
			Region:    region,
			Subregion: SubregionNone,
			WeekEnd:   weekEnd,
			Metrics:   make(map[string]int, len(columns)),
		}
		if hasFacility {
			r.Facility = strings.TrimSpace(cell(cells, facilityIdx))
		}
		if hasSubregion {
			if s := strings.TrimSpace(cell(cells, subregionIdx)); s != "" {
				r.Subregion = s
			}
		}
		for _, m := range columns {
			r.Metrics[m] = parseCount(cell(cells, colIdx[m]))
		}
		rows = append(rows, r)
	}

	zap.L().Debug("report: file loaded",
		zap.String("file", base),
		zap.String("strategy", strategy),
		zap.Time("week_end", weekEnd),
		zap.Int("rows", len(rows)),
		zap.Int("metric_columns", len(columns)),
	)

	return &FileReport{Path: path, WeekEnd: weekEnd, Columns: columns, Rows: rows}, nil
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// parseCount coerces a metric cell to a count. Anything unparseable maps to
// zero; a bad cell never fails the row.
func parseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
