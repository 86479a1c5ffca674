// Package report implements the weekly attendance report pipeline: per-file
// loading and normalization, cross-file aggregation, per-region time-series
// construction, and derived rate metrics.
package report

// Identifying columns of the report format. The format is fixed to one
// exporter; there is no schema negotiation.
const (
	ColFacility  = "會所"
	ColRegion    = "大區"
	ColSubregion = "小區"
)

// SubregionNone is stamped on rows whose source file carried no 小區 column.
const SubregionNone = "未分小區"

// ScopeAll selects every region combined.
const ScopeAll = "總計"

// MetricColumns are the numeric columns recognized in report files, in
// canonical order. Any subset may appear in a given file.
var MetricColumns = []string{
	"主日",
	"兒童主日",
	"小排",
	"禱告",
	"晨興",
	"福音出訪",
	"家聚會出訪",
	"家聚會受訪",
	"召會生活",
	"新人主日",
	"新人家聚會受訪",
}

// Metrics referenced by name elsewhere in the pipeline.
const (
	MetricLordsDay      = "主日"
	MetricSmallGroup    = "小排"
	MetricPrayer        = "禱告"
	MetricMorningWatch  = "晨興"
	MetricGospelVisits  = "福音出訪"
	MetricHomeVisitsOut = "家聚會出訪"
	MetricHomeVisited   = "家聚會受訪"
	MetricChurchLife    = "召會生活"
)

// MetricTotalVisits is derived: 福音出訪 + 家聚會出訪.
const MetricTotalVisits = "總出訪"
