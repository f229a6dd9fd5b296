package weather

import (
	"fmt"
	"time"
)

// Partition splits a requested range across the two backing sources around a
// single boundary day: today minus cutoffDays. Dates on or before the
// boundary go to the archive source, later dates to the forecast source. The
// boundary day itself belongs to the archive side, which carries finalized
// observations. A side with no dates is nil, distinct from an empty result.
//
// When both sub-ranges are present they are disjoint and their union is
// exactly the input range.
func Partition(r DateRange, today time.Time, cutoffDays int) (archive, forecast *DateRange, err error) {
	if r.Start.After(r.End) {
		return nil, nil, fmt.Errorf("%w: start %s after end %s",
			ErrInvalidRange, r.Start.Format(DateFormat), r.End.Format(DateFormat))
	}

	boundary := Day(today).AddDate(0, 0, -cutoffDays)

	if !r.Start.After(boundary) {
		end := r.End
		if end.After(boundary) {
			end = boundary
		}
		archive = &DateRange{Start: r.Start, End: end}
	}

	if r.End.After(boundary) {
		start := r.Start
		if !start.After(boundary) {
			start = boundary.AddDate(0, 0, 1)
		}
		forecast = &DateRange{Start: start, End: r.End}
	}

	return archive, forecast, nil
}
