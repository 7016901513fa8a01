package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/parquet"
	"github.com/civiclens/civiclens/schema"
)

// PrintMergeResults outputs an aligned timeline, dispatching based on the output format configured.
func PrintMergeResults(stdout io.Writer, result schema.MergeResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON merged timeline"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeMergeCSV(w, result, fmtFloat)
		}, "Wrote CSV merged timeline"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(stdout, cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteMergedParquet(w, result.Rows, seriesNames(result))
		}, "Wrote Parquet merged timeline"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.PNGOut:
		if err := writeWithFile(stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeMergePNG(w, result)
		}, "Wrote PNG merged timeline chart"); err != nil {
			return fmt.Errorf("error writing PNG output: %w", err)
		}
	case schema.SVGOut:
		return fmt.Errorf("svg output is only available for trend charts")
	default:
		// Default to human-readable table
		if err := printMergeTable(stdout, result, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing merged timeline table: %w", err)
		}
	}
	return nil
}

// printMergeTable prints one row per timestamp and one column per event.
func printMergeTable(w io.Writer, result schema.MergeResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	names := seriesNames(result)
	nameWidth := GetMaxColumnWidth(cfg, 20, len(names))

	headers := make([]string, 0, len(names)+1)
	headers = append(headers, "Date")
	for _, name := range names {
		headers = append(headers, contract.TruncateText(name, nameWidth))
	}

	data := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		cells := make([]string, 0, len(names)+1)
		cells = append(cells, row.Date)
		for idx := range names {
			cells = append(cells, fmtFloat(row.Value(idx)))
		}
		data = append(data, cells)
	}

	if err := renderTable(w, headers, data, 0); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Merged %d events into %d rows by %s in %v with %d workers. Cache backend: %s\n",
		len(names), len(result.Rows), result.Metric, duration, cfg.Workers, cfg.CacheBackend)
	return nil
}

// seriesNames returns the display name of every merged series, in column order.
func seriesNames(result schema.MergeResult) []string {
	names := make([]string, len(result.Series))
	for i, s := range result.Series {
		names[i] = s.Name
		if names[i] == "" {
			names[i] = schema.SeriesKey(i)
		}
	}
	return names
}
