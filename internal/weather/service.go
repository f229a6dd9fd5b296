package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weatherdash/weatherdash/internal/store"
)

// SeriesRequest describes one dashboard query.
type SeriesRequest struct {
	Query      string
	Range      DateRange
	Resolution Resolution
	Variables  []Variable
}

// Warning reports a degraded portion of a result: which source failed, for
// which sub-range, and why.
type Warning struct {
	Source  string    `json:"source"`
	Range   DateRange `json:"range"`
	Message string    `json:"message"`
}

// SeriesResult is the merged output handed to the presentation layer.
type SeriesResult struct {
	RequestID  string     `json:"requestId"`
	Location   Location   `json:"location"`
	Resolution Resolution `json:"resolution"`
	Variables  []Variable `json:"variables"`
	Series     TimeSeries `json:"series"`
	Partial    bool       `json:"partial"`
	Warnings   []Warning  `json:"warnings,omitempty"`
}

// Options tunes the pipeline. Zero values fall back to defaults.
type Options struct {
	// CutoffDays is the archive/forecast boundary: dates up to today minus
	// this many days are served by the archive source.
	CutoffDays int

	// HorizonDays caps how far into the future a range may extend.
	HorizonDays int

	// MinDate is the earliest queryable calendar date.
	MinDate time.Time

	// FetchTimeout bounds each individual source call.
	FetchTimeout time.Duration

	// GeoCache and SeriesCache are optional; when nil, nothing is cached.
	GeoCache    *store.Memory[Location]
	SeriesCache *store.Memory[SeriesResult]

	// Now is overridable for tests.
	Now func() time.Time
}

const (
	defaultCutoffDays   = 5
	defaultHorizonDays  = 16
	defaultFetchTimeout = 30 * time.Second
)

var defaultMinDate = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

// Service orchestrates geocoding, range partitioning, the two source
// fetches, and the merge. A single failed source degrades the result to a
// shorter series with a warning; only when every attempted source fails does
// the request surface an aggregate error.
type Service struct {
	geocoder Geocoder
	archive  SourceFetcher
	forecast SourceFetcher
	opts     Options
}

// NewService creates a Service over a geocoder and the two source fetchers.
func NewService(geocoder Geocoder, archive, forecast SourceFetcher, opts Options) *Service {
	if opts.CutoffDays <= 0 {
		opts.CutoffDays = defaultCutoffDays
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = defaultHorizonDays
	}
	if opts.MinDate.IsZero() {
		opts.MinDate = defaultMinDate
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		geocoder: geocoder,
		archive:  archive,
		forecast: forecast,
		opts:     opts,
	}
}

// ResolveLocation geocodes a place name, consulting the cache first.
func (s *Service) ResolveLocation(ctx context.Context, query string) (Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Location{}, fmt.Errorf("%w: empty query", ErrNotFound)
	}

	cacheKey := strings.ToLower(query)
	if s.opts.GeoCache != nil {
		if loc, ok := s.opts.GeoCache.Get(cacheKey); ok {
			return loc, nil
		}
	}

	loc, err := s.geocoder.Resolve(ctx, query)
	if err != nil {
		return Location{}, err
	}
	if s.opts.GeoCache != nil {
		s.opts.GeoCache.Set(cacheKey, loc)
	}
	return loc, nil
}

// GetSeries runs the full pipeline for one request. On aggregate upstream
// failure it returns an empty-series result alongside the error so the
// caller can still report which sub-ranges were attempted.
func (s *Service) GetSeries(ctx context.Context, req SeriesRequest) (SeriesResult, error) {
	today := Day(s.opts.Now())

	if err := s.validate(req, today); err != nil {
		return SeriesResult{}, err
	}

	loc, err := s.ResolveLocation(ctx, req.Query)
	if err != nil {
		return SeriesResult{}, err
	}

	cacheKey := seriesCacheKey(loc, req, today)
	if s.opts.SeriesCache != nil {
		if res, ok := s.opts.SeriesCache.Get(cacheKey); ok {
			res.RequestID = uuid.NewString()
			return res, nil
		}
	}

	archiveRange, forecastRange, err := Partition(req.Range, today, s.opts.CutoffDays)
	if err != nil {
		return SeriesResult{}, err
	}

	type sourceOutcome struct {
		series TimeSeries
		err    error
	}

	fetchOne := func(f SourceFetcher, r DateRange) sourceOutcome {
		fctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()

		series, err := f.Fetch(fctx, loc, r, req.Resolution, req.Variables)
		if err != nil && errors.Is(fctx.Err(), context.DeadlineExceeded) {
			err = &SourceError{Source: f.Name(), Range: r, Err: fmt.Errorf("%w: timeout", ErrUpstreamUnavailable)}
		}
		return sourceOutcome{series: series, err: err}
	}

	var (
		wg                   sync.WaitGroup
		archiveOut, forecOut sourceOutcome
	)
	if archiveRange != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			archiveOut = fetchOne(s.archive, *archiveRange)
		}()
	}
	if forecastRange != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			forecOut = fetchOne(s.forecast, *forecastRange)
		}()
	}
	wg.Wait()

	res := SeriesResult{
		RequestID:  uuid.NewString(),
		Location:   loc,
		Resolution: req.Resolution,
		Variables:  req.Variables,
	}

	var (
		attempted int
		failures  []error
	)
	collect := func(f SourceFetcher, r *DateRange, out sourceOutcome) TimeSeries {
		if r == nil {
			return nil
		}
		attempted++
		if out.err == nil {
			return out.series
		}
		if errors.Is(out.err, ErrNoData) {
			// Empty sub-range, not a failure.
			return nil
		}
		log.Printf("weather: %s fetch failed for %s %s: %v", f.Name(), loc.Key(), r, out.err)
		failures = append(failures, out.err)
		res.Warnings = append(res.Warnings, Warning{
			Source:  f.Name(),
			Range:   *r,
			Message: out.err.Error(),
		})
		return nil
	}

	archiveSeries := collect(s.archive, archiveRange, archiveOut)
	forecastSeries := collect(s.forecast, forecastRange, forecOut)

	res.Series = Merge(archiveSeries, forecastSeries, req.Variables)
	res.Partial = len(failures) > 0

	if attempted > 0 && len(failures) == attempted {
		return res, &AggregateError{Errs: failures}
	}

	if s.opts.SeriesCache != nil && !res.Partial {
		s.opts.SeriesCache.Set(cacheKey, res)
	}
	return res, nil
}

func (s *Service) validate(req SeriesRequest, today time.Time) error {
	if req.Range.Start.After(req.Range.End) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidRange,
			req.Range.Start.Format(DateFormat), req.Range.End.Format(DateFormat))
	}
	if req.Range.Start.Before(s.opts.MinDate) {
		return fmt.Errorf("%w: start before %s", ErrInvalidRange, s.opts.MinDate.Format(DateFormat))
	}
	if horizon := today.AddDate(0, 0, s.opts.HorizonDays); req.Range.End.After(horizon) {
		return fmt.Errorf("%w: end beyond forecast horizon %s", ErrInvalidRange, horizon.Format(DateFormat))
	}
	if len(req.Variables) == 0 {
		return fmt.Errorf("%w: empty variable set", ErrInvalidVariable)
	}
	for _, v := range req.Variables {
		if _, ok := v.Param(req.Resolution); !ok {
			return fmt.Errorf("%w: %q not available at %s resolution", ErrInvalidVariable, v, req.Resolution)
		}
	}
	return nil
}

func seriesCacheKey(loc Location, req SeriesRequest, today time.Time) string {
	return strings.Join([]string{
		loc.Key(),
		req.Range.String(),
		string(req.Resolution),
		VariableKey(req.Variables),
		today.Format(DateFormat),
	}, "|")
}
