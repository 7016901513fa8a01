// Package parquet exports civiclens runs and aligned timelines to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/civiclens/civiclens/schema"
)

// Run is one recorded merge or trend invocation.
// This struct maps to the civiclens_runs database table.
type Run struct {
	RunID int64 `parquet:"run_id,snappy"`

	// Kind is merge or trend
	Kind string `parquet:"run_kind,dict,snappy"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is null for runs that never finished
	DurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	SeriesCount int32 `parquet:"series_count,snappy"`
	RowCount    int32 `parquet:"row_count,snappy"`

	// Params contains the JSON-encoded run parameters
	Params *string `parquet:"run_params,optional,snappy"`
}

// RunValue is a single cell of an aligned timeline recorded by a run.
// This struct maps to the civiclens_run_values database table.
type RunValue struct {
	RunID      int64   `parquet:"run_id,snappy"`
	RowIndex   int32   `parquet:"row_index,snappy"`
	Timestamp  int64   `parquet:"timestamp,snappy"`
	DateLabel  string  `parquet:"date_label,snappy"`
	SeriesKey  string  `parquet:"series_key,dict,snappy"`
	SeriesName string  `parquet:"series_name,dict,snappy"`
	Value      float64 `parquet:"value,snappy"`
}

// MergedValue is the long-format shape of one aligned row and series.
type MergedValue struct {
	Timestamp  int64   `parquet:"timestamp,snappy"`
	Date       string  `parquet:"date,snappy"`
	SeriesKey  string  `parquet:"series_key,dict,snappy"`
	SeriesName string  `parquet:"series_name,dict,snappy"`
	Value      float64 `parquet:"value,snappy"`
}

// WriteRunsParquet writes runs to a Parquet file at outputPath.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteRunValuesParquet writes run values to a Parquet file at outputPath.
func WriteRunValuesParquet(data []RunValue, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteMergedParquet writes aligned rows in long format to w.
func WriteMergedParquet(w io.Writer, rows []schema.MergedRow, names []string) error {
	return write(w, ConvertMergedRows(rows, names))
}

// writeFile creates outputPath and writes data into it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// write encodes data with a schema inferred from the struct tags of T.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts stored runs for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:       record.RunID,
			Kind:        string(record.Kind),
			StartTime:   record.StartTime,
			EndTime:     record.EndTime,
			DurationMs:  record.DurationMs,
			SeriesCount: record.SeriesCount,
			RowCount:    record.RowCount,
			Params:      record.Params,
		}
	}
	return result
}

// ConvertRunValueRecords converts stored run values for Parquet export.
func ConvertRunValueRecords(records []schema.RunValueRecord) []RunValue {
	result := make([]RunValue, len(records))
	for i, record := range records {
		result[i] = RunValue(record)
	}
	return result
}

// ConvertMergedRows flattens aligned rows into one record per row and series.
// names[i] labels the series at index i; missing names fall back to the series key.
func ConvertMergedRows(rows []schema.MergedRow, names []string) []MergedValue {
	var result []MergedValue
	for _, row := range rows {
		for idx, value := range row.Values {
			key := schema.SeriesKey(idx)
			name := key
			if idx < len(names) && names[idx] != "" {
				name = names[idx]
			}
			result = append(result, MergedValue{
				Timestamp:  row.Timestamp,
				Date:       row.Date,
				SeriesKey:  key,
				SeriesName: name,
				Value:      value,
			})
		}
	}
	return result
}
