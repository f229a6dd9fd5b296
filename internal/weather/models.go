package weather

import (
	"fmt"
	"time"
)

// DateFormat is the calendar-date layout used throughout the service.
const DateFormat = "2006-01-02"

// Resolution is the temporal granularity of a time series.
type Resolution string

const (
	ResolutionHourly Resolution = "hourly"
	ResolutionDaily  Resolution = "daily"
)

// ParseResolution parses a user-supplied resolution string.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case ResolutionHourly:
		return ResolutionHourly, nil
	case ResolutionDaily:
		return ResolutionDaily, nil
	default:
		return "", fmt.Errorf("invalid resolution %q: must be hourly or daily", s)
	}
}

// Candidate is one ranked geocoding match.
type Candidate struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// Location is a resolved place. Alternatives carries the lower-ranked
// geocoding candidates so a caller can offer disambiguation without a
// second round trip.
type Location struct {
	Query        string      `json:"query"`
	Name         string      `json:"name"`
	Latitude     float64     `json:"latitude"`
	Longitude    float64     `json:"longitude"`
	Timezone     string      `json:"timezone"`
	Alternatives []Candidate `json:"alternatives,omitempty"`
}

// Key returns a canonical string key for indexing this location in caches.
func (l Location) Key() string {
	return fmt.Sprintf("%.4f:%.4f", l.Latitude, l.Longitude)
}

// Day truncates t to midnight UTC, turning an instant into a calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a calendar date in DateFormat.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalizes both endpoints to calendar dates and enforces
// start <= end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if r.Start.After(r.End) {
		return DateRange{}, fmt.Errorf("%w: start %s after end %s",
			ErrInvalidRange, r.Start.Format(DateFormat), r.End.Format(DateFormat))
	}
	return r, nil
}

// Days returns the number of calendar days the range covers, inclusive.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether the calendar date of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateFormat) + ".." + r.End.Format(DateFormat)
}

// Record is a single observation row. A nil value means the source did not
// report that variable for this timestamp; zero is a real measurement.
type Record struct {
	Timestamp time.Time             `json:"timestamp"`
	Values    map[Variable]*float64 `json:"values"`
}

// TimeSeries is a sequence of records strictly increasing by timestamp.
type TimeSeries []Record
