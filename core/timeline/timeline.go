// Package timeline aligns independently sampled series onto one shared time axis.
package timeline

import (
	"slices"

	"github.com/civiclens/civiclens/schema"
)

// observation is the surviving value of one series at one timestamp.
type observation struct {
	value float64
	date  string
}

// Align merges the series into one row per distinct timestamp, sorted ascending.
//
// Each row carries a value for every series. A series reads 0 until its first
// observation and then holds its most recent observed value. When a series
// reports the same timestamp twice, the later point wins. The row label comes
// from the lowest indexed series that reports the timestamp.
func Align(series []schema.Series) []schema.MergedRow {
	if len(series) == 0 {
		return []schema.MergedRow{}
	}

	observed := make([]map[int64]observation, len(series))
	labels := make(map[int64]string)
	for i, s := range series {
		obs := make(map[int64]observation, len(s.Points))
		for _, p := range s.Points {
			obs[p.Timestamp] = observation{value: p.Value, date: p.Date}
		}
		observed[i] = obs
		for ts, o := range obs {
			if _, ok := labels[ts]; !ok {
				labels[ts] = o.date
			}
		}
	}

	timestamps := make([]int64, 0, len(labels))
	for ts := range labels {
		timestamps = append(timestamps, ts)
	}
	slices.Sort(timestamps)

	last := make([]float64, len(series))
	rows := make([]schema.MergedRow, 0, len(timestamps))
	for _, ts := range timestamps {
		values := make([]float64, len(series))
		for i := range series {
			if o, ok := observed[i][ts]; ok {
				last[i] = o.value
			}
			values[i] = last[i]
		}
		rows = append(rows, schema.MergedRow{
			Date:      labels[ts],
			Timestamp: ts,
			Values:    values,
		})
	}
	return rows
}

// Column extracts the values of one series from aligned rows.
func Column(rows []schema.MergedRow, idx int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Value(idx)
	}
	return out
}
