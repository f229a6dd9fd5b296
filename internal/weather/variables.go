package weather

import (
	"fmt"
	"sort"
	"strings"
)

// Variable identifies one weather measurement from the fixed catalog.
type Variable string

const (
	VarTemperature   Variable = "temperature"
	VarHumidity      Variable = "humidity"
	VarPrecipitation Variable = "precipitation"
	VarWindSpeed     Variable = "wind_speed"
	VarWindGusts     Variable = "wind_gusts"
	VarPressure      Variable = "pressure"
	VarCloudCover    Variable = "cloud_cover"
)

// Upstream parameter names differ by resolution: hourly series use the
// instantaneous fields, daily series the per-day aggregates.
var hourlyParams = map[Variable]string{
	VarTemperature:   "temperature_2m",
	VarHumidity:      "relative_humidity_2m",
	VarPrecipitation: "precipitation",
	VarWindSpeed:     "wind_speed_10m",
	VarWindGusts:     "wind_gusts_10m",
	VarPressure:      "pressure_msl",
	VarCloudCover:    "cloudcover",
}

var dailyParams = map[Variable]string{
	VarTemperature:   "temperature_2m_mean",
	VarHumidity:      "relative_humidity_2m_mean",
	VarPrecipitation: "precipitation_sum",
	VarWindSpeed:     "wind_speed_10m_max",
	VarWindGusts:     "wind_gusts_10m_max",
	VarPressure:      "surface_pressure_mean",
	VarCloudCover:    "cloud_cover_mean",
}

// Param returns the upstream parameter name for v at the given resolution.
// The second return is false when the variable is not in the catalog or has
// no upstream field at that resolution.
func (v Variable) Param(res Resolution) (string, bool) {
	switch res {
	case ResolutionHourly:
		p, ok := hourlyParams[v]
		return p, ok
	case ResolutionDaily:
		p, ok := dailyParams[v]
		return p, ok
	default:
		return "", false
	}
}

// ParseVariable validates a user-supplied variable identifier against the
// catalog.
func ParseVariable(s string) (Variable, error) {
	v := Variable(strings.TrimSpace(s))
	if _, ok := hourlyParams[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidVariable, s)
	}
	return v, nil
}

// ParseVariables parses a comma-separated variable list, dropping duplicates
// while preserving first-seen order.
func ParseVariables(s string) ([]Variable, error) {
	var (
		vars []Variable
		seen = map[Variable]bool{}
	)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		v, err := ParseVariable(part)
		if err != nil {
			return nil, err
		}
		if !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("%w: empty variable set", ErrInvalidVariable)
	}
	return vars, nil
}

// VariableKey returns a canonical representation of a variable set, usable
// as part of a cache key.
func VariableKey(vars []Variable) string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = string(v)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
