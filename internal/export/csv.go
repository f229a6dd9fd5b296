// Package export serializes merged time series for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/weatherdash/weatherdash/internal/weather"
)

// Write renders a series as CSV: a "time" column followed by one column per
// requested variable, one row per record in timestamp order. Absent values
// become empty cells, never zeros.
func Write(w io.Writer, series weather.TimeSeries, res weather.Resolution, vars []weather.Variable) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(vars)+1)
	header = append(header, "time")
	for _, v := range vars {
		header = append(header, string(v))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	timeFormat := "2006-01-02T15:04"
	if res == weather.ResolutionDaily {
		timeFormat = weather.DateFormat
	}

	row := make([]string, len(header))
	for _, rec := range series {
		row[0] = rec.Timestamp.Format(timeFormat)
		for i, v := range vars {
			if val := rec.Values[v]; val != nil {
				row[i+1] = strconv.FormatFloat(*val, 'f', -1, 64)
			} else {
				row[i+1] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
