package report

import (
	"sort"
	"time"
)

// Row is one reporting unit's counts for one week. Metrics is sparse: a
// metric is present only when the source file carried the column.
type Row struct {
	Facility  string         `json:"facility"`
	Region    string         `json:"region"`
	Subregion string         `json:"subregion"`
	WeekEnd   time.Time      `json:"week_end"`
	Metrics   map[string]int `json:"metrics"`
}

// Metric returns the row's count for a metric, zero when absent.
func (r Row) Metric(name string) int {
	return r.Metrics[name]
}

// key identifies a row for deduplication.
func (r Row) key() string {
	return r.Facility + "\x1f" + r.Region + "\x1f" + r.Subregion + "\x1f" + r.WeekEnd.Format("2006-01-02")
}

// Corpus is the aggregated report table: rows sorted by week-ending date
// ascending, unique by (facility, region, subregion, week). Columns records
// which metric columns appeared in at least one source file, in canonical
// order; a row from a file lacking one of them counts as zero there.
type Corpus struct {
	Rows    []Row    `json:"rows"`
	Columns []string `json:"columns"`
}

// Regions returns the distinct region names in first-seen order.
func (c *Corpus) Regions() []string {
	var regions []string
	seen := make(map[string]bool)
	for _, r := range c.Rows {
		if r.Region == "" || seen[r.Region] {
			continue
		}
		seen[r.Region] = true
		regions = append(regions, r.Region)
	}
	return regions
}

// Subregions returns the distinct sub-region names within a region, sorted.
func (c *Corpus) Subregions(region string) []string {
	seen := make(map[string]bool)
	for _, r := range c.Rows {
		if r.Region != region || r.Subregion == "" {
			continue
		}
		seen[r.Subregion] = true
	}
	subs := make([]string, 0, len(seen))
	for s := range seen {
		subs = append(subs, s)
	}
	sort.Strings(subs)
	return subs
}

// Weeks returns the distinct week-ending dates, ascending.
func (c *Corpus) Weeks() []time.Time {
	var weeks []time.Time
	seen := make(map[time.Time]bool)
	for _, r := range c.Rows {
		if seen[r.WeekEnd] {
			continue
		}
		seen[r.WeekEnd] = true
		weeks = append(weeks, r.WeekEnd)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}
