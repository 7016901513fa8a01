package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/civiclens/civiclens/schema"
)

// writeTrendCSV writes one record per observation with its chart coordinates.
func writeTrendCSV(w io.Writer, result schema.TrendResult, fmtFloat func(float64) string) error {
	header := []string{"date", "timestamp", "value", "x", "y"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, p := range result.Series {
			record := []string{p.Date, strconv.FormatInt(p.Timestamp, 10), fmtFloat(p.Value), "", ""}
			if i < len(result.Points) {
				record[3] = strconv.FormatFloat(result.Points[i].X, 'f', -1, 64)
				record[4] = strconv.FormatFloat(result.Points[i].Y, 'f', -1, 64)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}
