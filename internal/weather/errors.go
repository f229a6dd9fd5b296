package weather

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRange is returned when a requested date range is malformed
	// or outside the queryable window.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidVariable is returned when a requested variable is not in
	// the catalog or not available at the requested resolution.
	ErrInvalidVariable = errors.New("invalid variable")

	// ErrNotFound is returned when geocoding yields zero matches.
	ErrNotFound = errors.New("no matching location")

	// ErrNoData marks an empty sub-range: the source answered but has no
	// records for the requested window. Not a pipeline failure.
	ErrNoData = errors.New("no data for range")

	// ErrUpstreamUnavailable covers transport failures, timeouts, 5xx
	// responses and open circuit breakers.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// SourceError ties a fetch failure to the source and sub-range it came
// from, so a caller can retry with a narrower range.
type SourceError struct {
	Source string
	Range  DateRange
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Range, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// AggregateError is surfaced when every attempted source failed. It keeps
// all underlying causes attached.
type AggregateError struct {
	Errs []error
}

func (e *AggregateError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "all sources failed: " + strings.Join(msgs, "; ")
}

func (e *AggregateError) Unwrap() []error { return e.Errs }
