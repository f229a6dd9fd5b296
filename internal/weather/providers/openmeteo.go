package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/weatherdash/weatherdash/internal/common"
	"github.com/weatherdash/weatherdash/internal/weather"
)

const (
	DefaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	hourlyTimeFormat = "2006-01-02T15:04"
)

// OpenMeteoSource implements weather.SourceFetcher over one Open-Meteo
// dataset endpoint. The archive and forecast endpoints share a request and
// response shape and differ only in the backing dataset and date coverage.
type OpenMeteoSource struct {
	name    string
	baseURL string
	http    *httpClient
}

// NewArchiveSource returns a fetcher for the finalized historical dataset.
// baseURL may be empty to use the public endpoint.
func NewArchiveSource(client *http.Client, baseURL string) *OpenMeteoSource {
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	return &OpenMeteoSource{
		name:    "archive",
		baseURL: baseURL,
		http:    newHTTPClient(client, "openmeteo-archive"),
	}
}

// NewForecastSource returns a fetcher for the recent-past-through-future
// dataset. baseURL may be empty to use the public endpoint.
func NewForecastSource(client *http.Client, baseURL string) *OpenMeteoSource {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &OpenMeteoSource{
		name:    "forecast",
		baseURL: baseURL,
		http:    newHTTPClient(client, "openmeteo-forecast"),
	}
}

func (s *OpenMeteoSource) Name() string { return s.name }

// Fetch retrieves one sub-range at the requested resolution. Responses are
// parallel arrays keyed by upstream parameter name, with JSON null for
// values the dataset does not report.
func (s *OpenMeteoSource) Fetch(ctx context.Context, loc weather.Location, r weather.DateRange, res weather.Resolution, vars []weather.Variable) (weather.TimeSeries, error) {
	params := make([]string, 0, len(vars))
	byParam := make(map[string]weather.Variable, len(vars))
	for _, v := range vars {
		p, ok := v.Param(res)
		if !ok {
			return nil, s.fail(r, fmt.Errorf("%w: %q at %s resolution", weather.ErrInvalidVariable, v, res))
		}
		params = append(params, p)
		byParam[p] = v
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	values.Set("start_date", r.Start.Format(weather.DateFormat))
	values.Set("end_date", r.End.Format(weather.DateFormat))
	values.Set("timezone", "auto")
	values.Set(string(res), strings.Join(params, ","))

	var payload struct {
		Hourly *varBlock `json:"hourly"`
		Daily  *varBlock `json:"daily"`
	}
	if err := s.http.getJSON(ctx, s.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, s.mapError(r, err)
	}

	block := payload.Hourly
	timeFormat := hourlyTimeFormat
	if res == weather.ResolutionDaily {
		block = payload.Daily
		timeFormat = weather.DateFormat
	}
	if block == nil || len(block.Times) == 0 {
		// Outside dataset coverage.
		return nil, s.fail(r, weather.ErrNoData)
	}

	series := make(weather.TimeSeries, 0, len(block.Times))
	for i, raw := range block.Times {
		ts, err := time.ParseInLocation(timeFormat, raw, time.UTC)
		if err != nil {
			return nil, s.fail(r, fmt.Errorf("malformed timestamp %q: %w", raw, err))
		}
		if !r.Contains(ts) {
			continue
		}

		rec := weather.Record{
			Timestamp: ts,
			Values:    make(map[weather.Variable]*float64, len(vars)),
		}
		for p, v := range byParam {
			col := block.Values[p]
			if i < len(col) && col[i] != nil {
				val := *col[i]
				rec.Values[v] = &val
			} else {
				rec.Values[v] = nil
			}
		}
		series = append(series, rec)
	}

	if len(series) == 0 {
		return nil, s.fail(r, weather.ErrNoData)
	}
	return series, nil
}

// mapError translates transport-layer failures into the domain taxonomy,
// keeping the source and sub-range attached.
func (s *OpenMeteoSource) mapError(r weather.DateRange, err error) error {
	var se *statusError
	if errors.As(err, &se) && common.HasAny(se.reason, "variable", "parameter") {
		return s.fail(r, fmt.Errorf("%w: %s", weather.ErrInvalidVariable, se.reason))
	}
	return s.fail(r, fmt.Errorf("%w: %v", weather.ErrUpstreamUnavailable, err))
}

func (s *OpenMeteoSource) fail(r weather.DateRange, err error) error {
	return &weather.SourceError{Source: s.name, Range: r, Err: err}
}

// varBlock decodes an Open-Meteo hourly/daily block: a "time" array plus one
// parallel value array per requested parameter.
type varBlock struct {
	Times  []string
	Values map[string][]*float64
}

func (b *varBlock) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.Values = make(map[string][]*float64, len(raw))
	for key, msg := range raw {
		if key == "time" {
			if err := json.Unmarshal(msg, &b.Times); err != nil {
				return fmt.Errorf("time column: %w", err)
			}
			continue
		}
		var col []*float64
		if err := json.Unmarshal(msg, &col); err != nil {
			// Non-numeric columns (units metadata etc.) are ignored.
			continue
		}
		b.Values[key] = col
	}
	return nil
}
