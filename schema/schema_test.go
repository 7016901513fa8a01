package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesKey(t *testing.T) {
	assert.Equal(t, "event_0", SeriesKey(0))
	assert.Equal(t, "event_12", SeriesKey(12))
}

func TestMergedRowMarshalJSON(t *testing.T) {
	row := MergedRow{Date: "d2", Timestamp: 2, Values: []float64{10, 5.5}}

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"d2","timestamp":2,"event_0":10,"event_1":5.5}`, string(data))

	empty, err := json.Marshal(MergedRow{Date: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"x","timestamp":0}`, string(empty))
}

func TestMergedRowValue(t *testing.T) {
	row := MergedRow{Values: []float64{1, 2}}
	assert.Equal(t, 2.0, row.Value(1))
	assert.Equal(t, 0.0, row.Value(2))
	assert.Equal(t, 0.0, row.Value(-1))
}

func TestEngagementPointMetricValue(t *testing.T) {
	likes, comments, total := 3.0, 4.0, 10.0

	tests := []struct {
		name     string
		point    EngagementPoint
		metric   Metric
		expected float64
	}{
		{"engagement present", EngagementPoint{Engagement: &total, Likes: &likes}, EngagementMetric, 10},
		{"engagement falls back to parts", EngagementPoint{Likes: &likes, Comments: &comments}, EngagementMetric, 7},
		{"likes", EngagementPoint{Likes: &likes}, LikesMetric, 3},
		{"missing comments", EngagementPoint{Likes: &likes}, CommentsMetric, 0},
		{"nothing at all", EngagementPoint{}, EngagementMetric, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.point.MetricValue(tt.metric))
		})
	}
}

func TestEngagementPointDecodeLenient(t *testing.T) {
	body := `{"event_id": 4, "timeline": [
		{"timestamp": "2025-11-02T10:20:00", "likes": 3, "comments": 1, "engagement": 4, "prediction": false},
		{"timestamp": null, "likes": 2},
		{"likes": 1, "prediction": true}
	]}`

	var tl EngagementTimeline
	require.NoError(t, json.Unmarshal([]byte(body), &tl))
	require.Len(t, tl.Timeline, 3)

	ts, ok := tl.Timeline[0].Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 11, 2, 10, 20, 0, 0, time.UTC), ts)

	_, ok = tl.Timeline[1].Time()
	assert.False(t, ok)
	assert.True(t, tl.Timeline[2].Prediction)
}

func TestParseBackendTime(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"2025-11-02T10:20:00Z", true},
		{"2025-11-02T10:20:00+01:00", true},
		{"2025-11-02T10:20:00.123456", true},
		{"2025-11-02 10:20:00", true},
		{"2025-11-02", true},
		{"yesterday", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, ok := ParseBackendTime(tt.input)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestReportKindNeedsID(t *testing.T) {
	assert.True(t, TopicReport.NeedsID())
	assert.True(t, EventReport.NeedsID())
	assert.False(t, WeeklyReport.NeedsID())
	assert.False(t, MonthlyReport.NeedsID())
}
