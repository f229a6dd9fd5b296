package httpapi

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/weatherdash/weatherdash/internal/export"
	"github.com/weatherdash/weatherdash/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/geocode", func(c *fiber.Ctx) error {
		q := c.Query("q")
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		loc, err := service.ResolveLocation(c.Context(), q)
		if err != nil {
			return mapDomainError(err)
		}
		return c.JSON(loc)
	})

	v1.Get("/weather/series", func(c *fiber.Ctx) error {
		req, err := bindSeriesQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.GetSeries(c.Context(), req)
		if err != nil {
			return mapDomainError(err)
		}
		return c.JSON(res)
	})

	v1.Get("/weather/series.csv", func(c *fiber.Ctx) error {
		req, err := bindSeriesQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.GetSeries(c.Context(), req)
		if err != nil {
			return mapDomainError(err)
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="weather_data.csv"`)
		c.Set("X-Request-Id", res.RequestID)
		if res.Partial {
			// CSV has no room for warnings in the body; flag degradation
			// in headers so the download is never silently incomplete.
			c.Set("X-Partial-Result", "true")
			for _, w := range res.Warnings {
				c.Append("X-Warning", fmt.Sprintf("%s %s: %s", w.Source, w.Range, w.Message))
			}
		}
		return export.Write(c, res.Series, res.Resolution, res.Variables)
	})
}

// seriesQuery holds the raw query parameters for the series endpoints.
type seriesQuery struct {
	Query      string `validate:"required"`
	Start      string `validate:"required"`
	End        string `validate:"required"`
	Resolution string `validate:"required,oneof=hourly daily"`
	Vars       string `validate:"required"`
}

func bindSeriesQuery(c *fiber.Ctx) (weather.SeriesRequest, error) {
	q := seriesQuery{
		Query:      c.Query("q"),
		Start:      c.Query("start"),
		End:        c.Query("end"),
		Resolution: c.Query("resolution", string(weather.ResolutionDaily)),
		Vars:       c.Query("vars"),
	}
	if err := validate.Struct(q); err != nil {
		return weather.SeriesRequest{}, err
	}

	start, err := weather.ParseDate(q.Start)
	if err != nil {
		return weather.SeriesRequest{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := weather.ParseDate(q.End)
	if err != nil {
		return weather.SeriesRequest{}, fmt.Errorf("invalid end date: %w", err)
	}
	r, err := weather.NewDateRange(start, end)
	if err != nil {
		return weather.SeriesRequest{}, err
	}

	res, err := weather.ParseResolution(q.Resolution)
	if err != nil {
		return weather.SeriesRequest{}, err
	}

	vars, err := weather.ParseVariables(q.Vars)
	if err != nil {
		return weather.SeriesRequest{}, err
	}

	return weather.SeriesRequest{
		Query:      q.Query,
		Range:      r,
		Resolution: res,
		Variables:  vars,
	}, nil
}

// mapDomainError translates the domain taxonomy into HTTP status codes.
func mapDomainError(err error) error {
	var agg *weather.AggregateError
	switch {
	case errors.Is(err, weather.ErrInvalidRange), errors.Is(err, weather.ErrInvalidVariable):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &agg):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

// ErrorHandler is the centralized fiber error handler for the app.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
