// Package external is the shared HTTP layer for every upstream provider.
// Outbound calls go through BaseClient, which adds the User-Agent header,
// a per-provider circuit breaker and uniform error mapping.
package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// DefaultUserAgent identifies the forecaster to public weather APIs
const DefaultUserAgent = "FishingForecast/1.0 (github.com/ngmaloney/bite-forecast)"

// maxErrorBody bounds how much of a failed response is kept for the error message
const maxErrorBody = 512

// Observer receives one call per upstream request
type Observer interface {
	ObserveUpstream(source, outcome string, elapsed time.Duration)
}

// StatusError is returned for a non-2xx upstream response
type StatusError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Source, e.StatusCode, e.Body)
}

// Unwrap lets callers match any status failure with errors.Is
func (e *StatusError) Unwrap() error {
	return models.ErrSourceUnavailable
}

// IsStatus reports whether err is a StatusError carrying one of codes
func IsStatus(err error, codes ...int) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.StatusCode == c {
			return true
		}
	}
	return false
}

// BaseClient wraps an *http.Client and a circuit breaker
type BaseClient struct {
	name      string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*http.Response]
	userAgent string
	accept    string
	observer  Observer
}

// Option configures a BaseClient
type Option func(*BaseClient)

// WithUserAgent overrides DefaultUserAgent
func WithUserAgent(ua string) Option {
	return func(c *BaseClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithAccept sets the Accept header sent on every request
func WithAccept(accept string) Option {
	return func(c *BaseClient) {
		c.accept = accept
	}
}

// WithObserver reports every request outcome to o
func WithObserver(o Observer) Option {
	return func(c *BaseClient) {
		c.observer = o
	}
}

// WithHTTPClient replaces the default client, mostly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *BaseClient) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewBaseClient creates a client named for its provider with the given timeout
func NewBaseClient(name string, timeout time.Duration, opts ...Option) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	c := &BaseClient{
		name:      name,
		client:    &http.Client{Timeout: timeout},
		breaker:   cb,
		userAgent: DefaultUserAgent,
		accept:    "application/json",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider name used for breaker state and metrics
func (c *BaseClient) Name() string {
	return c.name
}

// Do executes req through the circuit breaker. 5xx and 429 responses count
// as breaker failures. Any non-2xx response is returned as a *StatusError
// with the body already closed.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.accept != "" && req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", c.accept)
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, c.statusError(r)
		}
		return r, nil
	})

	if err != nil {
		c.observe("error", start)
		if resp != nil {
			resp.Body.Close()
		}
		var se *StatusError
		if errors.As(err, &se) {
			return nil, se
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s circuit open: %v", models.ErrSourceUnavailable, c.name, err)
		}
		return nil, fmt.Errorf("%w: %s request failed: %v", models.ErrSourceUnavailable, c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe("status", start)
		se := c.statusError(resp)
		resp.Body.Close()
		return nil, se
	}

	c.observe("ok", start)
	return resp, nil
}

func (c *BaseClient) statusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Source: c.name, StatusCode: resp.StatusCode, Body: string(body)}
}

func (c *BaseClient) observe(outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstream(c.name, outcome, time.Since(start))
	}
}

// GetJSON issues a GET for rawURL with query params and decodes the body into out
func (c *BaseClient) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: failed to decode response: %v", models.ErrDataUnparseable, c.name, err)
	}
	return nil
}
