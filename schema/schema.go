// Package schema has the models shared by every part of civiclens.
package schema

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TimePoint is one observation of a series.
type TimePoint struct {
	Timestamp int64   `json:"timestamp"` // Sortable key (unix seconds)
	Date      string  `json:"date"`      // Display label
	Value     float64 `json:"value"`
}

// Series is an ordered list of observations for one named entity.
type Series struct {
	Name   string      `json:"name"`
	Points []TimePoint `json:"points"`
}

// SeriesKey returns the column key for the series at idx.
func SeriesKey(idx int) string {
	return "event_" + strconv.Itoa(idx)
}

// MergedRow is one aligned row with a value for every input series.
type MergedRow struct {
	Date      string
	Timestamp int64
	Values    []float64 // Indexed by series position
}

// MarshalJSON flattens the row into date, timestamp and one event_<idx> key per series.
func (r MergedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	date, err := json.Marshal(r.Date)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"date":`)
	buf.Write(date)
	buf.WriteString(`,"timestamp":`)
	buf.WriteString(strconv.FormatInt(r.Timestamp, 10))
	for i, v := range r.Values {
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"`)
		buf.WriteString(SeriesKey(i))
		buf.WriteString(`":`)
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Value returns the value of the series at idx, or 0 when it is out of range.
func (r MergedRow) Value(idx int) float64 {
	if idx < 0 || idx >= len(r.Values) {
		return 0
	}
	return r.Values[idx]
}

// MergeResult is an aligned timeline plus the series it was built from.
type MergeResult struct {
	Series []SeriesInfo `json:"series"`
	Rows   []MergedRow  `json:"rows"`
	Metric Metric       `json:"metric"`
}

// SeriesInfo names one column of a merge result.
type SeriesInfo struct {
	Key     string `json:"key"`
	EventID int    `json:"event_id"`
	Name    string `json:"name"`
	Points  int    `json:"points"`
}

// Point2D is a point in chart space.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AxisTick is one labelled horizontal grid line.
type AxisTick struct {
	Percent int     `json:"percent"`
	Value   float64 `json:"value"`
	Y       float64 `json:"y"`
}

// TrendStats summarizes a trend series.
type TrendStats struct {
	Peak    float64 `json:"peak"`
	Average float64 `json:"average"`
	Total   float64 `json:"total"`
	Growth  float64 `json:"growth_pct"`
}

// TrendResult holds everything needed to render a smoothed trend chart.
type TrendResult struct {
	EventID int         `json:"event_id"`
	Name    string      `json:"name"`
	Metric  Metric      `json:"metric"`
	Labels  []string    `json:"labels"`
	Values  []float64   `json:"values"`
	Points  []Point2D   `json:"points"`
	Path    string      `json:"path"`
	Area    string      `json:"area"`
	Ticks   []AxisTick  `json:"ticks"`
	Stats   TrendStats  `json:"stats"`
	Closed  bool        `json:"closed"`
	Tension float64     `json:"tension"`
	Frame   ChartFrame  `json:"frame"`
	Series  []TimePoint `json:"-"`
}

// ChartFrame describes the drawable area of a trend chart.
type ChartFrame struct {
	Left     float64 `json:"left"`
	Width    float64 `json:"width"`
	Baseline float64 `json:"baseline"`
	Height   float64 `json:"height"`
}
