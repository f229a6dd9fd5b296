package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/weatherdash/weatherdash/internal/common"
	"github.com/weatherdash/weatherdash/internal/weather"
)

const DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// GeocodingClient resolves free-text place names via the Open-Meteo
// geocoding API. Ranking comes from the service; this client only picks the
// top match and carries the rest as alternatives.
type GeocodingClient struct {
	baseURL string
	count   int
	http    *httpClient
}

// NewGeocodingClient returns a geocoder. baseURL may be empty to use the
// public endpoint.
func NewGeocodingClient(client *http.Client, baseURL string) *GeocodingClient {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &GeocodingClient{
		baseURL: baseURL,
		count:   10,
		http:    newHTTPClient(client, "openmeteo-geocoding"),
	}
}

// Resolve implements weather.Geocoder.
func (g *GeocodingClient) Resolve(ctx context.Context, query string) (weather.Location, error) {
	values := url.Values{}
	values.Set("name", query)
	values.Set("count", strconv.Itoa(g.count))
	values.Set("language", "en")
	values.Set("format", "json")

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Timezone  string  `json:"timezone"`
			Admin1    string  `json:"admin1"`
			Admin2    string  `json:"admin2"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := g.http.getJSON(ctx, g.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Location{}, fmt.Errorf("%w: geocoding %q: %v", weather.ErrUpstreamUnavailable, query, err)
	}

	if len(payload.Results) == 0 {
		return weather.Location{}, fmt.Errorf("%w: %q", weather.ErrNotFound, query)
	}

	top := payload.Results[0]
	loc := weather.Location{
		Query:     query,
		Name:      common.JoinNonEmpty(", ", top.Name, top.Admin1, top.Country),
		Latitude:  top.Latitude,
		Longitude: top.Longitude,
		Timezone:  top.Timezone,
	}
	for _, alt := range payload.Results[1:] {
		loc.Alternatives = append(loc.Alternatives, weather.Candidate{
			Name:      common.JoinNonEmpty(", ", alt.Name, alt.Admin1, alt.Country),
			Latitude:  alt.Latitude,
			Longitude: alt.Longitude,
			Timezone:  alt.Timezone,
		})
	}
	return loc, nil
}
