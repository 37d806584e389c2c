// Package openmeteo is the global fallback weather provider. It averages
// Open-Meteo hourly forecasts over the daylight window of a day.
package openmeteo

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

const (
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	DefaultTimeout = 20 * time.Second

	hourlyFields   = "temperature_2m,precipitation,cloud_cover,pressure_msl,windspeed_10m"
	maxForecastDay = 16
	hourLayout     = "2006-01-02T15:04"
)

// Client fetches hourly forecasts from Open-Meteo
type Client struct {
	*external.BaseClient
	baseURL string
	clock   clockwork.Clock
}

// NewClient creates an Open-Meteo client. An empty baseURL uses the public
// endpoint; a nil clock uses the real one.
func NewClient(baseURL string, clock clockwork.Clock, opts ...external.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		BaseClient: external.NewBaseClient("open-meteo", DefaultTimeout, opts...),
		baseURL:    baseURL,
		clock:      clock,
	}
}

// FetchDay returns the daylight-averaged weather for in.Date
func (c *Client) FetchDay(ctx context.Context, in models.DayInputs) (models.WeatherObservation, error) {
	target, err := time.Parse(models.DateLayout, in.Date)
	if err != nil {
		return models.WeatherObservation{}, fmt.Errorf("%w: %v", models.ErrInvalidDateRange, err)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(in.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(in.Lon, 'f', -1, 64))
	params.Set("hourly", hourlyFields)
	params.Set("windspeed_unit", "ms")
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(c.forecastDays(target)))

	var resp forecastResponse
	if err := c.GetJSON(ctx, c.baseURL, params, &resp); err != nil {
		return models.WeatherObservation{}, fmt.Errorf("failed to fetch open-meteo forecast: %w", err)
	}
	return resp.Hourly.daylightAverage(in.Date)
}

// forecastDays is the number of days, counting today, needed to reach target
func (c *Client) forecastDays(target time.Time) int {
	now := c.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Ceil(target.Sub(today).Hours()/24)) + 1
	return max(1, min(days, maxForecastDay))
}

type hourly struct {
	Time          []string   `json:"time"`
	Temperature2m []*float64 `json:"temperature_2m"`
	Precipitation []*float64 `json:"precipitation"`
	CloudCover    []*float64 `json:"cloud_cover"`
	PressureMSL   []*float64 `json:"pressure_msl"`
	WindSpeed10m  []*float64 `json:"windspeed_10m"`
}

type forecastResponse struct {
	Hourly hourly `json:"hourly"`
}

// daylightAverage averages the 06:00-18:00 local hours of date. Times are
// already local because the request asks for timezone=auto.
func (h hourly) daylightAverage(date string) (models.WeatherObservation, error) {
	var idx []int
	for i, ts := range h.Time {
		if !strings.HasPrefix(ts, date) {
			continue
		}
		t, err := time.Parse(hourLayout, ts)
		if err != nil {
			continue
		}
		if hr := t.Hour(); hr >= 6 && hr <= 18 {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return models.WeatherObservation{}, fmt.Errorf("%w: no daylight hours for %s", models.ErrDataUnparseable, date)
	}

	obs := models.WeatherObservation{
		TempC:    round(avg(h.Temperature2m, idx, 20), 10),
		WindKph:  round(avg(h.WindSpeed10m, idx, 10/3.6)*3.6, 10),
		PrecipMm: round(avg(h.Precipitation, idx, 0), 100),
		CloudPct: math.Round(avg(h.CloudCover, idx, 50)),
	}
	if h.PressureMSL != nil {
		obs.PressureHpa = models.Float64(round(avg(h.PressureMSL, idx, 1013.25), 10))
	}
	return obs, nil
}

// avg averages the non-null entries of values at idx, or returns def
func avg(values []*float64, idx []int, def float64) float64 {
	var sum float64
	var n int
	for _, i := range idx {
		if i < len(values) && values[i] != nil && !math.IsNaN(*values[i]) {
			sum += *values[i]
			n++
		}
	}
	if n == 0 {
		return def
	}
	return sum / float64(n)
}

func round(v, scale float64) float64 {
	return math.Round(v*scale) / scale
}
