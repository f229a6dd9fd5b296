package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
)

// statusError carries a non-retryable upstream status, with the reason text
// Open-Meteo returns in its error payload.
type statusError struct {
	code   int
	reason string
}

func (e *statusError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("status %d: %s", e.code, e.reason)
	}
	return fmt.Sprintf("status %d", e.code)
}

// BackoffConfig controls retry behaviour for outbound calls.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func defaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// httpClient wraps outbound GET-and-decode calls with retries, exponential
// backoff, and a per-upstream circuit breaker.
type httpClient struct {
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	backoff BackoffConfig
}

func newHTTPClient(client *http.Client, name string) *httpClient {
	return &httpClient{
		client: client,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		backoff: defaultBackoff(),
	}
}

// getJSON issues a GET for u and decodes the JSON body into out. Rate limits
// and 5xx responses are retried with backoff; other non-2xx statuses return
// a *statusError immediately.
func (c *httpClient) getJSON(ctx context.Context, u string, out any) error {
	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := c.getOnce(ctx, u)
		if err == nil {
			defer body.Close()
			return json.NewDecoder(body).Decode(out)
		}

		// Open circuit and client-side errors do not improve with retries.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("circuit open: %w", err)
		}
		var se *statusError
		if errors.As(err, &se) {
			return err
		}

		if attempt >= c.backoff.MaxRetries {
			return err
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

func (c *httpClient) getOnce(ctx context.Context, u string) (io.ReadCloser, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			return nil, errRateLimited
		case resp.StatusCode >= 500:
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			defer resp.Body.Close()
			return nil, &statusError{code: resp.StatusCode, reason: decodeReason(resp.Body)}
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, err
	}

	body, ok := result.(io.ReadCloser)
	if !ok {
		return nil, errors.New("unexpected result type from circuit breaker")
	}
	return body, nil
}

// decodeReason extracts the "reason" field from an Open-Meteo error payload.
func decodeReason(r io.Reader) string {
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	return payload.Reason
}
