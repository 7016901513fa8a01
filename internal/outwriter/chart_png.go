package outwriter

import (
	"errors"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/civiclens/civiclens/core/timeline"
	"github.com/civiclens/civiclens/schema"
)

// Layout of raster merge charts.
const (
	mergeChartWidth  = 1400
	mergeChartHeight = 520
	pngTimeFormat    = "01-02 15:04"
)

// errNoChartData is returned when there is nothing to plot.
var errNoChartData = errors.New("no data points to chart")

// writeMergePNG renders one line per merged series.
func writeMergePNG(w io.Writer, result schema.MergeResult) error {
	if len(result.Rows) == 0 || len(result.Series) == 0 {
		return errNoChartData
	}

	times := make([]time.Time, len(result.Rows))
	for i, row := range result.Rows {
		times[i] = time.Unix(row.Timestamp, 0).UTC()
	}

	names := seriesNames(result)
	series := make([]chart.Series, 0, len(names))
	for idx, name := range names {
		xs, ys := padSinglePoint(times, timeline.Column(result.Rows, idx))
		col := chart.GetDefaultColor(idx)
		series = append(series, chart.TimeSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}

	ch := chart.Chart{
		Title:      "Engagement by " + string(result.Metric),
		Width:      mergeChartWidth,
		Height:     mergeChartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Time", ValueFormatter: chart.TimeValueFormatterWithFormat(pngTimeFormat)},
		YAxis:      chart.YAxis{Name: string(result.Metric), Range: valueRange(result.Rows)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

// writeTrendPNG renders a trend with its filled area using the chart style colors.
func writeTrendPNG(w io.Writer, result schema.TrendResult, style ChartStyle) error {
	if len(result.Series) == 0 {
		return errNoChartData
	}

	times := make([]time.Time, len(result.Series))
	values := make([]float64, len(result.Series))
	for i, p := range result.Series {
		times[i] = time.Unix(p.Timestamp, 0).UTC()
		values[i] = p.Value
	}
	xs, ys := padSinglePoint(times, values)

	line := drawingColor(style.Colors.Line)
	ch := chart.Chart{
		Title:      result.Name,
		Width:      style.Image.Width,
		Height:     style.Image.Height,
		Background: chart.Style{FillColor: drawingColor(style.Colors.Background), Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: style.Labels.XAxisTitle, ValueFormatter: chart.TimeValueFormatterWithFormat(pngTimeFormat)},
		YAxis:      chart.YAxis{Name: string(result.Metric)},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    result.Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: line,
					StrokeWidth: style.Line.Width,
					FillColor:   drawingColor(style.Colors.Area).WithAlpha(uint8(min(255, 1020*style.Colors.AreaTop))),
					DotColor:    drawingColor(style.Colors.Point),
					DotWidth:    style.Line.PointRadius,
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

// padSinglePoint adds a second sample one second later, since a one-point series has no x range.
func padSinglePoint(times []time.Time, values []float64) ([]time.Time, []float64) {
	if len(times) != 1 {
		return times, values
	}
	return []time.Time{times[0], times[0].Add(time.Second)}, []float64{values[0], values[0]}
}

// valueRange spans zero to the largest merged value so every series shares one scale.
func valueRange(rows []schema.MergedRow) *chart.ContinuousRange {
	maxValue := 0.0
	for _, row := range rows {
		for _, v := range row.Values {
			maxValue = max(maxValue, v)
		}
	}
	if maxValue == 0 {
		maxValue = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: maxValue}
}
