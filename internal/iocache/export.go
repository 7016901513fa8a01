package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/internal/parquet"
)

// ExportRuns writes every recorded run and value to <base>.runs.parquet and
// <base>.run_values.parquet, reporting progress to w.
func ExportRuns(w io.Writer, store contract.RunStore, base string) error {
	if base == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run tracking is disabled. Set --run-backend to enable it")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total values: %d\n", status.TotalRows)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	values, err := store.GetAllRowValues()
	if err != nil {
		return fmt.Errorf("failed to retrieve run values: %w", err)
	}

	runsFile := base + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	valuesFile := base + ".run_values.parquet"
	parquetValues := parquet.ConvertRunValueRecords(values)
	if err := parquet.WriteRunValuesParquet(parquetValues, valuesFile); err != nil {
		return fmt.Errorf("failed to write run values: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d values to: %s\n", len(parquetValues), valuesFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Apache Arrow.")
	return nil
}
