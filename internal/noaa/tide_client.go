package noaa

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

// WindSample is the latest station wind observation
type WindSample struct {
	SpeedKph      float64
	DirectionDeg  *float64
	DirectionText string
	ObservedAt    time.Time
}

// NumericSample is the latest value of a single-valued station product
type NumericSample struct {
	Value      float64
	ObservedAt time.Time
}

// TideClient reads products from the CO-OPS datagetter API
type TideClient struct {
	*external.BaseClient
	baseURL string
}

// NewTideClient creates a datagetter client. An empty baseURL uses the
// public endpoint.
func NewTideClient(baseURL string, opts ...external.Option) *TideClient {
	if baseURL == "" {
		baseURL = DefaultDatagetterURL
	}
	return &TideClient{
		BaseClient: external.NewBaseClient("coops", DefaultCOOPSTimeout, opts...),
		baseURL:    baseURL,
	}
}

func (c *TideClient) params(stationID, product string) url.Values {
	params := url.Values{}
	params.Set("station", stationID)
	params.Set("product", product)
	params.Set("application", coopsApplicationName)
	params.Set("units", "metric")
	params.Set("time_zone", "gmt")
	params.Set("format", "json")
	return params
}

// GetTidePredictions returns the high and low tides in the 24 hours starting
// at dayStart, in chronological order.
func (c *TideClient) GetTidePredictions(ctx context.Context, stationID string, dayStart time.Time) ([]models.TideEvent, error) {
	params := c.params(stationID, predictionsProduct)
	params.Set("begin_date", dayStart.Format(coopsDateLayout))
	params.Set("end_date", dayStart.AddDate(0, 0, 1).Format(coopsDateLayout))
	params.Set("datum", "MLLW")
	params.Set("interval", "hilo")

	var resp tideResponse
	if err := c.GetJSON(ctx, c.baseURL, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch tide predictions: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrDataUnparseable, resp.Error.Message)
	}

	events := make([]models.TideEvent, 0, len(resp.Predictions))
	for _, pred := range resp.Predictions {
		eventTime, err := time.Parse(coopsTimeLayout, pred.Time)
		if err != nil {
			continue
		}
		height, err := strconv.ParseFloat(pred.Height, 64)
		if err != nil {
			continue
		}

		tideType := models.TideLow
		if pred.Type == "H" {
			tideType = models.TideHigh
		}
		events = append(events, models.TideEvent{
			Time:         eventTime.UTC(),
			HeightMeters: height,
			Type:         tideType,
		})
	}

	return models.EventsInWindow(events, dayStart), nil
}

// GetLatestSample returns the most recent value of product, read from the
// field named key. A nil sample means the station returned no usable data.
func (c *TideClient) GetLatestSample(ctx context.Context, stationID, product, key string) (*NumericSample, error) {
	row, err := c.latest(ctx, stationID, product)
	if err != nil || row == nil {
		return nil, err
	}

	at, ok := parseCOOPSTime(row["t"])
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseFloat(row[key], 64)
	if err != nil {
		return nil, nil
	}
	return &NumericSample{Value: v, ObservedAt: at}, nil
}

// GetLatestWind returns the most recent wind observation converted to km/h
func (c *TideClient) GetLatestWind(ctx context.Context, stationID string) (*WindSample, error) {
	row, err := c.latest(ctx, stationID, windProduct)
	if err != nil || row == nil {
		return nil, err
	}

	at, ok := parseCOOPSTime(row["t"])
	if !ok {
		return nil, nil
	}
	speed, err := strconv.ParseFloat(row["s"], 64)
	if err != nil {
		return nil, nil
	}

	sample := &WindSample{
		SpeedKph:      speed * 3.6,
		DirectionText: row["dr"],
		ObservedAt:    at,
	}
	if d, err := strconv.ParseFloat(row["d"], 64); err == nil {
		sample.DirectionDeg = models.Float64(d)
	}
	return sample, nil
}

func (c *TideClient) latest(ctx context.Context, stationID, product string) (map[string]string, error) {
	params := c.params(stationID, product)
	params.Set("date", "latest")

	var resp sampleResponse
	if err := c.GetJSON(ctx, c.baseURL, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", product, err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return resp.Data[0], nil
}

// parseCOOPSTime reads "2006-01-02 15:04" as UTC
func parseCOOPSTime(s string) (time.Time, bool) {
	t, err := time.Parse(coopsTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Internal types for CO-OPS datagetter responses

type coopsError struct {
	Message string `json:"message"`
}

type tideResponse struct {
	Predictions []struct {
		Time   string `json:"t"`
		Height string `json:"v"`    // NOAA returns this as string
		Type   string `json:"type"` // "H" or "L"
	} `json:"predictions"`
	Error *coopsError `json:"error"`
}

type sampleResponse struct {
	Data  []map[string]string `json:"data"`
	Error *coopsError         `json:"error"`
}
