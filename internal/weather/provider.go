package weather

import "context"

// SourceFetcher abstracts one time-series backend (archive or forecast).
// Implementations must return records strictly within the requested
// sub-range, at the requested resolution, containing only the requested
// variables with nil marking absent values. An empty sub-range is reported
// as ErrNoData, transport failures as ErrUpstreamUnavailable, and a variable
// the backend does not support at the resolution as ErrInvalidVariable.
type SourceFetcher interface {
	Name() string
	Fetch(ctx context.Context, loc Location, r DateRange, res Resolution, vars []Variable) (TimeSeries, error)
}

// Geocoder resolves a free-text place name to coordinates. Zero matches is
// ErrNotFound; multiple matches resolve to the top-ranked candidate with the
// rest attached as Location.Alternatives.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (Location, error)
}
