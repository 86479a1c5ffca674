package report

import (
	"sort"
	"time"
)

// TimeSeries maps ascending week-ending dates to summed metric counts for
// one scope. Values holds one aligned slice per column; a metric absent
// from the corpus has no column at all, while a metric present elsewhere
// sums as zero for rows that lack it.
type TimeSeries struct {
	Weeks   []time.Time      `json:"weeks"`
	Columns []string         `json:"columns"`
	Values  map[string][]int `json:"values"`
}

// Empty reports whether the scope matched no rows.
func (ts *TimeSeries) Empty() bool {
	return len(ts.Weeks) == 0
}

// Has reports whether the series carries a column for the metric.
func (ts *TimeSeries) Has(metric string) bool {
	_, ok := ts.Values[metric]
	return ok
}

// Latest returns the most recent week's value for a metric, zero when the
// column is absent or the series is empty.
func (ts *TimeSeries) Latest(metric string) int {
	vs := ts.Values[metric]
	if len(vs) == 0 {
		return 0
	}
	return vs[len(vs)-1]
}

// Average returns the arithmetic mean over all weeks, zero when the column
// is absent or the series is empty.
func (ts *TimeSeries) Average(metric string) float64 {
	vs := ts.Values[metric]
	if len(vs) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}

// BuildTimeSeries filters the corpus to a region (ScopeAll means no filter),
// groups by week-ending date and sums every metric column the corpus knows.
// An empty result means "no data for this scope", not an error. When either
// visit sub-metric is present a derived 總出訪 column is added as their
// element-wise sum, treating an absent sub-metric as zero.
func BuildTimeSeries(c *Corpus, region string) *TimeSeries {
	return buildSeries(c.Columns, c.Rows, func(r Row) bool {
		return region == ScopeAll || r.Region == region
	})
}

// BuildSubregionTimeSeries narrows the corpus to one (region, sub-region)
// pair. Used for sub-district trend charts.
func BuildSubregionTimeSeries(c *Corpus, region, subregion string) *TimeSeries {
	return buildSeries(c.Columns, c.Rows, func(r Row) bool {
		return r.Region == region && r.Subregion == subregion
	})
}

func buildSeries(columns []string, rows []Row, match func(Row) bool) *TimeSeries {
	sums := make(map[time.Time]map[string]int)
	for _, r := range rows {
		if !match(r) {
			continue
		}
		week, ok := sums[r.WeekEnd]
		if !ok {
			week = make(map[string]int, len(columns))
			sums[r.WeekEnd] = week
		}
		for _, m := range columns {
			week[m] += r.Metric(m)
		}
	}
	if len(sums) == 0 {
		return &TimeSeries{Values: map[string][]int{}}
	}

	weeks := make([]time.Time, 0, len(sums))
	for w := range sums {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	ts := &TimeSeries{
		Weeks:   weeks,
		Columns: append([]string(nil), columns...),
		Values:  make(map[string][]int, len(columns)+1),
	}
	for _, m := range columns {
		vs := make([]int, len(weeks))
		for i, w := range weeks {
			vs[i] = sums[w][m]
		}
		ts.Values[m] = vs
	}

	if ts.Has(MetricGospelVisits) || ts.Has(MetricHomeVisitsOut) {
		total := make([]int, len(weeks))
		for i := range weeks {
			total[i] = index(ts.Values[MetricGospelVisits], i) + index(ts.Values[MetricHomeVisitsOut], i)
		}
		ts.Columns = append(ts.Columns, MetricTotalVisits)
		ts.Values[MetricTotalVisits] = total
	}

	return ts
}

func index(vs []int, i int) int {
	if i >= len(vs) {
		return 0
	}
	return vs[i]
}
