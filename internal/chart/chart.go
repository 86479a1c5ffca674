// Package chart renders region trend charts as PNG line plots. The pipeline
// never depends on a render succeeding; failures are reported to callers and
// logged, not propagated into aggregation.
package chart

import (
	"image/color"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/church-stats/attendance-cli/internal/report"
)

// series is one plotted metric with its legend label and line color.
type series struct {
	Metric string
	Label  string
	Color  color.RGBA
}

var attendanceSeries = []series{
	{report.MetricLordsDay, "當周主日人數", color.RGBA{R: 0xff, A: 0xff}},
	{report.MetricSmallGroup, "小排人數", color.RGBA{R: 0xff, G: 0xd7, A: 0xff}},
	{report.MetricMorningWatch, "晨興人數", color.RGBA{G: 0x80, A: 0xff}},
	{report.MetricChurchLife, "召會生活", color.RGBA{R: 0x8e, G: 0x44, B: 0xad, A: 0xff}},
}

var burdenSeries = []series{
	{report.MetricPrayer, "禱告人數", color.RGBA{G: 0xaa, B: 0xff, A: 0xff}},
	{report.MetricTotalVisits, "總出訪人數", color.RGBA{G: 0x44, B: 0xaa, A: 0xff}},
	{report.MetricHomeVisited, "受訪人數", color.RGBA{R: 0x66, G: 0xcc, B: 0xff, A: 0xff}},
}

// Attendance writes the attendance trend chart for one scope. The bool is
// false when the series carries none of the attendance columns.
func Attendance(title string, ts *report.TimeSeries, outPath string) (bool, error) {
	return render(title, attendanceSeries, ts, outPath)
}

// Burden writes the burden trend chart (prayer and visitation metrics).
func Burden(title string, ts *report.TimeSeries, outPath string) (bool, error) {
	return render(title, burdenSeries, ts, outPath)
}

func render(title string, set []series, ts *report.TimeSeries, outPath string) (bool, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "日期"
	p.Y.Label.Text = "人數"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006/01/02"}
	p.Add(plotter.NewGrid())

	plotted := false
	for _, s := range set {
		if !ts.Has(s.Metric) {
			continue
		}
		pts := points(ts, s.Metric)

		line, err := plotter.NewLine(pts)
		if err != nil {
			return false, eris.Wrapf(err, "chart: line for %s", s.Metric)
		}
		line.Color = s.Color
		line.Width = vg.Points(2)

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return false, eris.Wrapf(err, "chart: markers for %s", s.Metric)
		}
		scatter.GlyphStyle = draw.GlyphStyle{Color: s.Color, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}

		labels, err := valueLabels(ts, s.Metric, pts)
		if err != nil {
			return false, eris.Wrapf(err, "chart: labels for %s", s.Metric)
		}

		p.Add(line, scatter, labels)
		p.Legend.Add(s.Label, line)
		plotted = true
	}
	if !plotted {
		return false, nil
	}

	p.Legend.Top = true
	p.Legend.Left = true

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return false, eris.Wrap(err, "chart: create output dir")
	}
	if err := p.Save(10*vg.Inch, 6*vg.Inch, outPath); err != nil {
		return false, eris.Wrapf(err, "chart: save %s", filepath.Base(outPath))
	}
	return true, nil
}

func points(ts *report.TimeSeries, metric string) plotter.XYs {
	vs := ts.Values[metric]
	pts := make(plotter.XYs, len(ts.Weeks))
	for i, w := range ts.Weeks {
		pts[i].X = float64(w.Unix())
		pts[i].Y = float64(vs[i])
	}
	return pts
}

func valueLabels(ts *report.TimeSeries, metric string, pts plotter.XYs) (*plotter.Labels, error) {
	texts := make([]string, len(pts))
	for i, v := range ts.Values[metric] {
		texts[i] = strconv.Itoa(v)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: texts})
	if err != nil {
		return nil, err
	}
	labels.Offset = vg.Point{Y: vg.Points(6)}
	return labels, nil
}
