package weather

import (
	"sort"
	"time"
)

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

// Merge stitches the archive and forecast series into one sequence ordered
// strictly ascending by timestamp, with no duplicate timestamps. For a
// timestamp present in both inputs, precedence is per field: the forecast
// value wins where it is present, and the archive value backfills variables
// the forecast record reports as absent. Every output record carries exactly
// the requested variable set, with nil for values neither source reported.
//
// The result depends only on the two inputs, so fetch completion order does
// not matter.
func Merge(archive, forecast TimeSeries, vars []Variable) TimeSeries {
	byTime := make(map[int64]map[Variable]*float64)

	overlay(byTime, archive, vars)
	overlay(byTime, forecast, vars)

	keys := make([]int64, 0, len(byTime))
	for k := range byTime {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	merged := make(TimeSeries, 0, len(keys))
	for _, k := range keys {
		values := byTime[k]
		for _, v := range vars {
			if _, ok := values[v]; !ok {
				values[v] = nil
			}
		}
		merged = append(merged, Record{
			Timestamp: unixTime(k),
			Values:    values,
		})
	}
	return merged
}

// overlay folds a series into the accumulator, later present values
// replacing earlier ones per variable. Absent values never overwrite.
func overlay(byTime map[int64]map[Variable]*float64, s TimeSeries, vars []Variable) {
	for _, rec := range s {
		k := rec.Timestamp.UTC().Unix()
		values, ok := byTime[k]
		if !ok {
			values = make(map[Variable]*float64, len(vars))
			byTime[k] = values
		}
		for _, v := range vars {
			if val := rec.Values[v]; val != nil {
				f := *val
				values[v] = &f
			}
		}
	}
}
