package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/weatherdash/weatherdash/internal/weather"
)

func fastBackoff() BackoffConfig {
	return BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func testRange(t *testing.T, start, end string) weather.DateRange {
	t.Helper()
	s, err := weather.ParseDate(start)
	if err != nil {
		t.Fatal(err)
	}
	e, err := weather.ParseDate(end)
	if err != nil {
		t.Fatal(err)
	}
	return weather.DateRange{Start: s, End: e}
}

func TestFetchHourlyParsesNulls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("hourly"); got != "temperature_2m,relative_humidity_2m" {
			t.Errorf("hourly params = %q", got)
		}
		if got := r.URL.Query().Get("timezone"); got != "auto" {
			t.Errorf("timezone = %q, want auto", got)
		}
		w.Write([]byte(`{
			"hourly": {
				"time": ["2024-05-01T00:00", "2024-05-01T01:00"],
				"temperature_2m": [12.5, null],
				"relative_humidity_2m": [80, 81]
			}
		}`))
	}))
	defer srv.Close()

	src := NewForecastSource(srv.Client(), srv.URL)
	vars := []weather.Variable{weather.VarTemperature, weather.VarHumidity}

	series, err := src.Fetch(context.Background(), weather.Location{Latitude: 51.5, Longitude: -0.12},
		testRange(t, "2024-05-01", "2024-05-01"), weather.ResolutionHourly, vars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(series) != 2 {
		t.Fatalf("expected 2 records, got %d", len(series))
	}
	if v := series[0].Values[weather.VarTemperature]; v == nil || *v != 12.5 {
		t.Errorf("first temperature = %v, want 12.5", v)
	}
	if v := series[1].Values[weather.VarTemperature]; v != nil {
		t.Errorf("null upstream value must stay absent, got %v", *v)
	}
	if v := series[1].Values[weather.VarHumidity]; v == nil || *v != 81 {
		t.Errorf("second humidity = %v, want 81", v)
	}
}

func TestFetchFiltersRecordsOutsideSubrange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"daily": {
				"time": ["2024-04-30", "2024-05-01", "2024-05-02"],
				"temperature_2m_mean": [9, 10, 11]
			}
		}`))
	}))
	defer srv.Close()

	src := NewArchiveSource(srv.Client(), srv.URL)

	series, err := src.Fetch(context.Background(), weather.Location{},
		testRange(t, "2024-05-01", "2024-05-02"), weather.ResolutionDaily, []weather.Variable{weather.VarTemperature})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected records strictly within the sub-range, got %d", len(series))
	}
	if !series[0].Timestamp.Equal(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first record at %s", series[0].Timestamp)
	}
}

func TestFetchNoDataOnMissingBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latitude": 51.5, "longitude": -0.12}`))
	}))
	defer srv.Close()

	src := NewArchiveSource(srv.Client(), srv.URL)

	_, err := src.Fetch(context.Background(), weather.Location{},
		testRange(t, "2024-05-01", "2024-05-02"), weather.ResolutionDaily, []weather.Variable{weather.VarTemperature})
	if !errors.Is(err, weather.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	var se *weather.SourceError
	if !errors.As(err, &se) || se.Source != "archive" {
		t.Fatalf("error must identify the source, got %v", err)
	}
}

func TestFetchMapsBadRequestToInvalidVariable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": true, "reason": "Cannot initialize WeatherVariable from invalid String value foo."}`))
	}))
	defer srv.Close()

	src := NewForecastSource(srv.Client(), srv.URL)
	src.http.backoff = fastBackoff()

	_, err := src.Fetch(context.Background(), weather.Location{},
		testRange(t, "2024-05-01", "2024-05-02"), weather.ResolutionDaily, []weather.Variable{weather.VarTemperature})
	if !errors.Is(err, weather.ErrInvalidVariable) {
		t.Fatalf("expected ErrInvalidVariable, got %v", err)
	}
}

func TestFetchMapsServerErrorToUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewArchiveSource(srv.Client(), srv.URL)
	src.http.backoff = fastBackoff()

	_, err := src.Fetch(context.Background(), weather.Location{},
		testRange(t, "2024-05-01", "2024-05-02"), weather.ResolutionDaily, []weather.Variable{weather.VarTemperature})
	if !errors.Is(err, weather.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
