package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/civiclens/civiclens/schema"
)

// writeMergeCSV writes date, timestamp and one event_<idx> column per series.
func writeMergeCSV(w io.Writer, result schema.MergeResult, fmtFloat func(float64) string) error {
	header := []string{"date", "timestamp"}
	for i := range result.Series {
		header = append(header, schema.SeriesKey(i))
	}

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range result.Rows {
			record := make([]string, 0, len(header))
			record = append(record, row.Date, strconv.FormatInt(row.Timestamp, 10))
			for idx := range result.Series {
				record = append(record, fmtFloat(row.Value(idx)))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}
