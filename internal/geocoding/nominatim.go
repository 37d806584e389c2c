package geocoding

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/bite-forecast/internal/external"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	nominatimTimeout    = 10 * time.Second
	// Nominatim usage policy allows at most one request per second
	nominatimInterval = time.Second
)

// Nominatim is a throttled client for the OpenStreetMap search API
type Nominatim struct {
	*external.BaseClient
	baseURL  string
	clock    clockwork.Clock
	lastCall time.Time
	mu       sync.Mutex
}

// NominatimOption configures a Nominatim client
type NominatimOption func(*Nominatim)

// WithClock replaces the clock used for throttling
func WithClock(c clockwork.Clock) NominatimOption {
	return func(n *Nominatim) { n.clock = c }
}

// NewNominatim creates a client. An empty baseURL uses the public endpoint.
func NewNominatim(baseURL string, opts []NominatimOption, clientOpts ...external.Option) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	n := &Nominatim{
		BaseClient: external.NewBaseClient("nominatim", nominatimTimeout, clientOpts...),
		baseURL:    baseURL,
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// nominatimResponse represents the Nominatim API response
type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns the best match for a free-text query, biased to the US
func (n *Nominatim) Search(ctx context.Context, query string) (*Location, error) {
	if err := n.throttle(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")
	params.Set("q", query)

	var results []nominatimResponse
	if err := n.GetJSON(ctx, n.baseURL, params, &results); err != nil {
		return nil, fmt.Errorf("searching nominatim: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results for %q", ErrNotFound, query)
	}

	result := results[0]
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}

	return &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      result.DisplayName,
	}, nil
}

// throttle blocks until a request is allowed. Concurrent callers queue on
// the mutex.
func (n *Nominatim) throttle(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.lastCall.IsZero() {
		if wait := nominatimInterval - n.clock.Since(n.lastCall); wait > 0 {
			select {
			case <-n.clock.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	n.lastCall = n.clock.Now()
	return nil
}
