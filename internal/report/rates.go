package report

import "math"

// RateFormula selects how a tracked metric's percentage is computed.
type RateFormula int

const (
	// FormulaCoverage reports the value as a share of the base: v / base.
	FormulaCoverage RateFormula = iota
	// FormulaDeviation reports the deviation from the base as a target:
	// (v - base) / base.
	FormulaDeviation
)

// TrackedMetrics are the metrics reported on the rates surface, in display
// order.
var TrackedMetrics = []string{
	MetricLordsDay,
	MetricSmallGroup,
	MetricMorningWatch,
	MetricChurchLife,
}

// rateFormulas is an explicit per-metric policy table. Only 主日 is read as
// a deviation from its target number; the rest read as coverage of the
// base. There is no general rule behind the split, so none is inferred.
var rateFormulas = map[string]RateFormula{
	MetricLordsDay:     FormulaDeviation,
	MetricSmallGroup:   FormulaCoverage,
	MetricMorningWatch: FormulaCoverage,
	MetricChurchLife:   FormulaCoverage,
}

// Rate is one tracked metric's latest and average counts together with
// their percentages against the caller-supplied base number.
type Rate struct {
	Metric      string  `json:"metric"`
	Latest      int     `json:"latest"`
	Average     float64 `json:"average"`
	LatestRate  float64 `json:"latest_rate"`
	AverageRate float64 `json:"average_rate"`
}

// ComputeRates evaluates every tracked metric against base. A metric absent
// from the series counts as zero. A base that is not strictly positive
// makes every rate NaN, since dividing by it is meaningless here.
func ComputeRates(ts *TimeSeries, base float64) []Rate {
	rates := make([]Rate, 0, len(TrackedMetrics))
	for _, metric := range TrackedMetrics {
		latest := ts.Latest(metric)
		avg := ts.Average(metric)
		rates = append(rates, Rate{
			Metric:      metric,
			Latest:      latest,
			Average:     avg,
			LatestRate:  rateOf(metric, float64(latest), base),
			AverageRate: rateOf(metric, avg, base),
		})
	}
	return rates
}

func rateOf(metric string, v, base float64) float64 {
	if base <= 0 {
		return math.NaN()
	}
	if rateFormulas[metric] == FormulaDeviation {
		return (v - base) / base * 100
	}
	return v / base * 100
}
