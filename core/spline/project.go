package spline

import (
	"math"
	"slices"
	"strings"

	"github.com/civiclens/civiclens/schema"
)

// Canvas size of the trend chart the default frame is laid out on.
const (
	CanvasWidth  = 2000
	CanvasHeight = 700
)

// DefaultFrame is the drawable area of the trend chart.
var DefaultFrame = schema.ChartFrame{
	Left:     80,
	Width:    1840,
	Baseline: 650,
	Height:   600,
}

// tickPercents are the labelled grid lines, bottom to top.
var tickPercents = []int{0, 25, 50, 75, 100}

// Project maps values onto the frame. The first value sits on the left edge and the
// last on the right edge; the minimum sits on the baseline and the maximum at the top.
func Project(values []float64, frame schema.ChartFrame) []schema.Point2D {
	if len(values) == 0 {
		return []schema.Point2D{}
	}
	lo, hi := slices.Min(values), slices.Max(values)
	span := hi - lo

	points := make([]schema.Point2D, len(values))
	for i, v := range values {
		x := frame.Left
		if len(values) > 1 {
			x = frame.Left + float64(i)/float64(len(values)-1)*frame.Width
		}
		norm := 0.0
		if span != 0 {
			norm = (v - lo) / span
		}
		points[i] = schema.Point2D{X: x, Y: frame.Baseline - norm*frame.Height}
	}
	return points
}

// AxisTicks returns the grid lines at 0, 25, 50, 75 and 100 percent of the value range.
func AxisTicks(values []float64, frame schema.ChartFrame) []schema.AxisTick {
	if len(values) == 0 {
		return []schema.AxisTick{}
	}
	lo, hi := slices.Min(values), slices.Max(values)
	span := hi - lo

	ticks := make([]schema.AxisTick, 0, len(tickPercents))
	for _, pct := range tickPercents {
		ticks = append(ticks, schema.AxisTick{
			Percent: pct,
			Value:   lo + span*float64(pct)/100,
			Y:       frame.Baseline - float64(pct)*frame.Height/100,
		})
	}
	return ticks
}

// AreaPath closes the smoothed curve down to the baseline so it can be filled.
func AreaPath(points []schema.Point2D, tension float64, frame schema.ChartFrame) string {
	curve := Build(points, tension, false)
	if curve.Empty() {
		return ""
	}
	first := points[0]
	last := points[len(points)-1]
	base := formatNumber(frame.Baseline)

	var sb strings.Builder
	sb.WriteString("M 0," + base)
	sb.WriteString(" L " + formatNumber(first.X) + "," + base)
	sb.WriteString(curve.body())
	sb.WriteString(" L " + formatNumber(last.X) + "," + base)
	sb.WriteString(" L " + formatNumber(frame.Left+frame.Width) + "," + base)
	sb.WriteString(" Z")
	return sb.String()
}

// Summarize computes peak, rounded average, total and rounded growth percentage.
// Growth is 0 when there is no non-zero starting value to grow from.
func Summarize(values []float64) schema.TrendStats {
	if len(values) == 0 {
		return schema.TrendStats{}
	}
	var total float64
	for _, v := range values {
		total += v
	}
	stats := schema.TrendStats{
		Peak:    slices.Max(values),
		Average: math.Round(total / float64(len(values))),
		Total:   total,
	}
	first, last := values[0], values[len(values)-1]
	if len(values) > 1 && first != 0 {
		stats.Growth = math.Round((last - first) / first * 100)
	}
	return stats
}
