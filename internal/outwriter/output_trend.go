package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/civiclens/civiclens/internal/contract"
	"github.com/civiclens/civiclens/schema"
)

// PrintTrendResults outputs a smoothed trend, dispatching based on the output format configured.
func PrintTrendResults(stdout io.Writer, result schema.TrendResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, trendDocument{TrendResult: result, Label: contract.GetPlainLabel(result.Stats.Growth)})
		}, "Wrote JSON trend"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(stdout, cfg.OutputFile, func(w io.Writer) error {
			return writeTrendCSV(w, result, fmtFloat)
		}, "Wrote CSV trend"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.SVGOut, schema.PNGOut:
		style, err := LoadChartStyle(cfg.ChartStyle)
		if err != nil {
			return err
		}
		render := func(w io.Writer) error { return writeTrendSVG(w, result, style) }
		if cfg.Output == schema.PNGOut {
			render = func(w io.Writer) error { return writeTrendPNG(w, result, style) }
		}
		if err := writeWithFile(stdout, cfg.OutputFile, render, fmt.Sprintf("Wrote %s trend chart", cfg.Output)); err != nil {
			return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
		}
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is only available for merged timelines")
	default:
		// Default to human-readable table
		if err := printTrendTable(stdout, result, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing trend table output: %w", err)
		}
	}
	return nil
}

// trendDocument adds the growth label to the JSON form of a trend.
type trendDocument struct {
	schema.TrendResult
	Label string `json:"label"`
}

// printTrendTable prints the observations, the summary stats and the SVG path.
func printTrendTable(w io.Writer, result schema.TrendResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	_, _ = fmt.Fprintf(w, "Trend for %s (event %d) by %s\n", result.Name, result.EventID, result.Metric)

	data := make([][]string, 0, len(result.Values))
	for i, v := range result.Values {
		row := []string{"", fmtFloat(v), "", ""}
		if i < len(result.Labels) {
			row[0] = result.Labels[i]
		}
		if i < len(result.Points) {
			row[2] = fmtFloat(result.Points[i].X)
			row[3] = fmtFloat(result.Points[i].Y)
		}
		data = append(data, row)
	}
	if err := renderTable(w, []string{"Date", "Value", "X", "Y"}, data, 0); err != nil {
		return err
	}

	label := contract.GetPlainLabel(result.Stats.Growth)
	if cfg.UseColors {
		label = contract.GetColorLabel(result.Stats.Growth)
	}
	stats := [][]string{{
		fmtFloat(result.Stats.Peak),
		fmtFloat(result.Stats.Average),
		fmtFloat(result.Stats.Total),
		fmt.Sprintf("%+.0f%%", result.Stats.Growth),
		label,
	}}
	if err := renderTable(w, []string{"Peak", "Average", "Total", "Growth", "Trend"}, stats); err != nil {
		return err
	}

	if result.Path == "" {
		_, _ = fmt.Fprintln(w, "Path: (fewer than two points)")
	} else {
		_, _ = fmt.Fprintf(w, "Path: %s\n", result.Path)
	}
	_, _ = fmt.Fprintf(w, "Trend built in %v with tension %g. Cache backend: %s\n", duration, result.Tension, cfg.CacheBackend)
	return nil
}
