package core

import (
	"cmp"
	"slices"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

// ExtractSeries turns an engagement timeline into a time series of the configured metric.
// Points without a usable timestamp are dropped, as are predictions unless requested
// and points outside the configured date range. The result is ordered by time.
func ExtractSeries(name string, points []schema.EngagementPoint, cfg *contract.Config) schema.Series {
	layout := cfg.DateFormat
	if layout == "" {
		layout = contract.DefaultDateFormat
	}

	series := schema.Series{Name: name, Points: make([]schema.TimePoint, 0, len(points))}
	for _, p := range points {
		if p.Prediction && !cfg.IncludePredictions {
			continue
		}
		ts, ok := p.Time()
		if !ok || !cfg.InRange(ts) {
			continue
		}
		ts = ts.UTC()
		series.Points = append(series.Points, schema.TimePoint{
			Timestamp: ts.Unix(),
			Date:      ts.Format(layout),
			Value:     p.MetricValue(cfg.Metric),
		})
	}

	// Stable so that duplicate timestamps keep their backend order for last-write-wins
	slices.SortStableFunc(series.Points, func(a, b schema.TimePoint) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	if cfg.Cumulative {
		var total float64
		for i := range series.Points {
			total += series.Points[i].Value
			series.Points[i].Value = total
		}
	}
	return series
}
