package outwriter

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/civiclens/core/spline"
	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

func sampleTrend() schema.TrendResult {
	series := []schema.TimePoint{
		{Timestamp: 1761991200, Date: "11-01 10:00", Value: 10},
		{Timestamp: 1761994800, Date: "11-01 11:00", Value: 30},
		{Timestamp: 1761998400, Date: "11-01 12:00", Value: 20},
	}
	values := []float64{10, 30, 20}
	points := spline.Project(values, spline.DefaultFrame)
	return schema.TrendResult{
		EventID: 7,
		Name:    "Road works <Main St>",
		Metric:  schema.LikesMetric,
		Labels:  []string{"11-01 10:00", "11-01 11:00", "11-01 12:00"},
		Values:  values,
		Points:  points,
		Path:    spline.Build(points, spline.DefaultTension, false).String(),
		Area:    spline.AreaPath(points, spline.DefaultTension, spline.DefaultFrame),
		Ticks:   spline.AxisTicks(values, spline.DefaultFrame),
		Stats:   spline.Summarize(values),
		Tension: spline.DefaultTension,
		Frame:   spline.DefaultFrame,
		Series:  series,
	}
}

func TestPrintTrendResultsTable(t *testing.T) {
	cfg := &contract.Config{Output: schema.TextOut, Precision: 0, Width: 120, CacheBackend: schema.NoneBackend}

	var buf bytes.Buffer
	require.NoError(t, PrintTrendResults(&buf, sampleTrend(), cfg, time.Second))

	out := buf.String()
	assert.Contains(t, out, "Trend for Road works <Main St> (event 7) by likes")
	assert.Contains(t, out, "11-01 12:00")
	assert.Contains(t, out, "+100%")
	assert.Contains(t, out, contract.SurgingValue)
	assert.Contains(t, out, "Path: M 80,650 C ")
	assert.Contains(t, out, "Trend built in 1s with tension 0.5. Cache backend: none")
}

func TestPrintTrendResultsTableDegenerate(t *testing.T) {
	result := schema.TrendResult{Name: "Quiet", Values: []float64{4}, Labels: []string{"d1"}}
	cfg := &contract.Config{Output: schema.TextOut, Width: 120}

	var buf bytes.Buffer
	require.NoError(t, PrintTrendResults(&buf, result, cfg, 0))
	assert.Contains(t, buf.String(), "Path: (fewer than two points)")
}

func TestPrintTrendResultsJSON(t *testing.T) {
	cfg := &contract.Config{Output: schema.JSONOut}

	var buf bytes.Buffer
	require.NoError(t, PrintTrendResults(&buf, sampleTrend(), cfg, 0))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, contract.SurgingValue, decoded["label"])
	assert.Equal(t, float64(7), decoded["event_id"])
	assert.True(t, strings.HasPrefix(decoded["path"].(string), "M 80,650"))
	assert.Len(t, decoded["ticks"], 5)
	assert.NotContains(t, decoded, "Series")
}

func TestPrintTrendResultsCSV(t *testing.T) {
	cfg := &contract.Config{Output: schema.CSVOut, Precision: 0}

	var buf bytes.Buffer
	require.NoError(t, PrintTrendResults(&buf, sampleTrend(), cfg, 0))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,timestamp,value,x,y", lines[0])
	assert.Equal(t, "11-01 10:00,1761991200,10,80,650", lines[1])
	assert.Equal(t, "11-01 11:00,1761994800,30,1000,50", lines[2])
}

func TestPrintTrendResultsSVG(t *testing.T) {
	cfg := &contract.Config{Output: schema.SVGOut}

	var buf bytes.Buffer
	require.NoError(t, PrintTrendResults(&buf, sampleTrend(), cfg, 0))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `viewBox="0 0 2000 700"`)
	assert.Contains(t, out, "Road works &lt;Main St&gt;")
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestPrintTrendResultsPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trend.png")
	cfg := &contract.Config{Output: schema.PNGOut, OutputFile: path}

	require.NoError(t, PrintTrendResults(io.Discard, sampleTrend(), cfg, 0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestPrintTrendResultsBadStyle(t *testing.T) {
	cfg := &contract.Config{Output: schema.SVGOut, ChartStyle: filepath.Join(t.TempDir(), "missing.yaml")}
	err := PrintTrendResults(io.Discard, sampleTrend(), cfg, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading chart style file")
}

func TestPrintTrendResultsParquetUnsupported(t *testing.T) {
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: "x.parquet"}
	err := PrintTrendResults(io.Discard, sampleTrend(), cfg, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only available for merged timelines")
}

func TestWriteTrendPNGEmpty(t *testing.T) {
	err := writeTrendPNG(io.Discard, schema.TrendResult{}, DefaultChartStyle())
	assert.ErrorIs(t, err, errNoChartData)
}
