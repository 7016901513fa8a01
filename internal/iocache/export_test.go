package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/civiclens/schema"
)

func TestExportRuns(t *testing.T) {
	store := newSQLiteRunStore(t)
	start := time.Now()
	runID, err := store.BeginRun(schema.MergeRun, start, map[string]any{"metric": "engagement"})
	require.NoError(t, err)
	require.NoError(t, store.RecordMergedRows(runID, []schema.MergedRow{{Date: "d1", Timestamp: 1, Values: []float64{3, 4}}}, []string{"A", "B"}))
	require.NoError(t, store.EndRun(runID, start.Add(time.Second), 2, 1))

	base := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExportRuns(&out, store, base))

	for _, suffix := range []string{".runs.parquet", ".run_values.parquet"} {
		info, err := os.Stat(base + suffix)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, out.String(), "Exported 1 runs")
	assert.Contains(t, out.String(), "Exported 2 values")
}

func TestExportRunsErrors(t *testing.T) {
	var out bytes.Buffer

	assert.ErrorContains(t, ExportRuns(&out, new(MockRunStore), ""), "--output-file")
	assert.ErrorContains(t, ExportRuns(&out, nil, "x"), "run tracking is disabled")

	empty := new(MockRunStore)
	empty.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true}, nil)
	assert.ErrorContains(t, ExportRuns(&out, empty, "x"), "no run data")

	broken := new(MockRunStore)
	broken.On("GetStatus").Return(schema.RunStatus{TotalRuns: 1}, nil)
	broken.On("GetAllRuns").Return(nil, errors.New("disk gone"))
	assert.ErrorContains(t, ExportRuns(&out, broken, "x"), "disk gone")

	empty.AssertExpectations(t)
	broken.AssertExpectations(t)
}
