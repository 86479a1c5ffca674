package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func week(day int) time.Time {
	return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
}

func testCorpus() *Corpus {
	return &Corpus{
		Columns: []string{"主日", "福音出訪", "家聚會出訪"},
		Rows: []Row{
			{Facility: "一會所", Region: "東區", Subregion: "一小區", WeekEnd: week(17),
				Metrics: map[string]int{"主日": 100, "福音出訪": 10, "家聚會出訪": 5}},
			{Facility: "一會所", Region: "東區", Subregion: "二小區", WeekEnd: week(17),
				Metrics: map[string]int{"主日": 50, "福音出訪": 4, "家聚會出訪": 2}},
			{Facility: "二會所", Region: "西區", Subregion: "一小區", WeekEnd: week(17),
				Metrics: map[string]int{"主日": 70, "福音出訪": 7, "家聚會出訪": 3}},
			{Facility: "一會所", Region: "東區", Subregion: "一小區", WeekEnd: week(24),
				Metrics: map[string]int{"主日": 110, "福音出訪": 8, "家聚會出訪": 6}},
		},
	}
}

func TestBuildTimeSeries_RegionScope(t *testing.T) {
	ts := BuildTimeSeries(testCorpus(), "東區")
	require.False(t, ts.Empty())
	require.Equal(t, []time.Time{week(17), week(24)}, ts.Weeks)
	assert.Equal(t, []int{150, 110}, ts.Values["主日"])
}

func TestBuildTimeSeries_AllScopeEqualsPartitionSum(t *testing.T) {
	corpus := testCorpus()
	all := BuildTimeSeries(corpus, ScopeAll)

	for _, metric := range all.Columns {
		for i := range all.Weeks {
			sum := 0
			for _, region := range corpus.Regions() {
				rts := BuildTimeSeries(corpus, region)
				for j, w := range rts.Weeks {
					if w.Equal(all.Weeks[i]) {
						sum += rts.Values[metric][j]
					}
				}
			}
			assert.Equal(t, all.Values[metric][i], sum,
				"metric %s week %s", metric, all.Weeks[i].Format("2006-01-02"))
		}
	}
}

func TestBuildTimeSeries_DerivedTotalVisits(t *testing.T) {
	ts := BuildTimeSeries(testCorpus(), "東區")
	require.True(t, ts.Has(MetricTotalVisits))
	// week 17: (10+4) + (5+2); week 24: 8 + 6
	assert.Equal(t, []int{21, 14}, ts.Values[MetricTotalVisits])
}

func TestBuildTimeSeries_TotalVisitsWithOneSubMetricAbsent(t *testing.T) {
	corpus := &Corpus{
		Columns: []string{"福音出訪"},
		Rows: []Row{
			{Region: "東區", Subregion: SubregionNone, WeekEnd: week(17),
				Metrics: map[string]int{"福音出訪": 9}},
		},
	}
	ts := BuildTimeSeries(corpus, "東區")
	require.True(t, ts.Has(MetricTotalVisits))
	assert.Equal(t, []int{9}, ts.Values[MetricTotalVisits])
}

func TestBuildTimeSeries_NoVisitMetricsNoDerivedColumn(t *testing.T) {
	corpus := &Corpus{
		Columns: []string{"主日"},
		Rows: []Row{
			{Region: "東區", Subregion: SubregionNone, WeekEnd: week(17),
				Metrics: map[string]int{"主日": 100}},
		},
	}
	ts := BuildTimeSeries(corpus, "東區")
	assert.False(t, ts.Has(MetricTotalVisits))
}

func TestBuildTimeSeries_ScopeEmpty(t *testing.T) {
	ts := BuildTimeSeries(testCorpus(), "南區")
	assert.True(t, ts.Empty())
	assert.Equal(t, 0, ts.Latest("主日"))
	assert.Equal(t, 0.0, ts.Average("主日"))
}

func TestBuildTimeSeries_AbsentMetricSumsAsZero(t *testing.T) {
	corpus := &Corpus{
		Columns: []string{"主日", "禱告"},
		Rows: []Row{
			// Second row comes from a file without the 禱告 column.
			{Region: "東區", Subregion: "一小區", WeekEnd: week(17),
				Metrics: map[string]int{"主日": 100, "禱告": 40}},
			{Region: "東區", Subregion: "二小區", WeekEnd: week(17),
				Metrics: map[string]int{"主日": 60}},
		},
	}
	ts := BuildTimeSeries(corpus, "東區")
	assert.Equal(t, []int{160}, ts.Values["主日"])
	assert.Equal(t, []int{40}, ts.Values["禱告"])
}

func TestBuildSubregionTimeSeries(t *testing.T) {
	ts := BuildSubregionTimeSeries(testCorpus(), "東區", "一小區")
	require.Equal(t, []time.Time{week(17), week(24)}, ts.Weeks)
	assert.Equal(t, []int{100, 110}, ts.Values["主日"])

	empty := BuildSubregionTimeSeries(testCorpus(), "東區", "九小區")
	assert.True(t, empty.Empty())
}

func TestTimeSeries_LatestAndAverage(t *testing.T) {
	ts := BuildTimeSeries(testCorpus(), "東區")
	assert.Equal(t, 110, ts.Latest("主日"))
	assert.InDelta(t, 130.0, ts.Average("主日"), 1e-9)
	assert.Equal(t, 0, ts.Latest("晨興"))
}
