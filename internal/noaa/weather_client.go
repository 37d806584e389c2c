package noaa

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

// PointMetadata is the NWS grid assignment for a coordinate
type PointMetadata struct {
	GridID         string
	GridX          int
	GridY          int
	ForecastOffice string // office ID, e.g. "OKX"
	ForecastZone   string // zone ID, e.g. "NYZ072"
	TimeZone       string
	City           string
	State          string
}

// GridDay is one day of NWS grid data reduced to daily values, plus the
// alerts and office for the point.
type GridDay struct {
	Observation models.WeatherObservation
	Trend       models.BarometricTrend
	Marine      *models.MarineObservation
	Alerts      []models.Alert
	Office      *models.OfficeInfo
}

// NWSClient fetches grid forecasts, alerts and office metadata from api.weather.gov
type NWSClient struct {
	*external.BaseClient
	baseURL string
	alerts  *AlertClient
	logger  *slog.Logger
}

// NewNWSClient creates a client for the NWS API. An empty baseURL uses the
// public endpoint.
func NewNWSClient(baseURL string, logger *slog.Logger, opts ...external.Option) *NWSClient {
	if baseURL == "" {
		baseURL = DefaultNWSBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]external.Option{external.WithAccept(nwsAcceptHeader)}, opts...)
	baseURL = strings.TrimRight(baseURL, "/")
	base := external.NewBaseClient("nws", DefaultNWSTimeout, opts...)
	return &NWSClient{
		BaseClient: base,
		baseURL:    baseURL,
		alerts:     newAlertClient(base, baseURL),
		logger:     logger,
	}
}

// GetPointMetadata resolves the grid, zone and office for a coordinate
func (c *NWSClient) GetPointMetadata(ctx context.Context, lat, lon float64) (*PointMetadata, error) {
	var resp pointResponse
	url := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
	if err := c.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get grid point: %w", err)
	}

	p := resp.Properties
	if p.GridID == "" {
		return nil, fmt.Errorf("%w: point %.4f,%.4f has no grid", models.ErrDataUnparseable, lat, lon)
	}

	return &PointMetadata{
		GridID:         p.GridID,
		GridX:          p.GridX,
		GridY:          p.GridY,
		ForecastOffice: lastSegment(p.ForecastOffice),
		ForecastZone:   lastSegment(p.ForecastZone),
		TimeZone:       p.TimeZone,
		City:           p.RelativeLocation.Properties.City,
		State:          p.RelativeLocation.Properties.State,
	}, nil
}

// GetGridData fetches the raw gridded forecast for a grid cell
func (c *NWSClient) GetGridData(ctx context.Context, gridID string, x, y int) (*GridData, error) {
	var resp gridpointResponse
	url := fmt.Sprintf("%s/gridpoints/%s/%d,%d", c.baseURL, gridID, x, y)
	if err := c.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get gridpoint data: %w", err)
	}
	return &resp.Properties, nil
}

// GetActiveAlerts returns active alerts for a zone. Failures yield an empty
// list; a missing alert feed is not a reason to abandon the grid forecast.
func (c *NWSClient) GetActiveAlerts(ctx context.Context, zone string) []models.Alert {
	alerts, err := c.alerts.GetActiveAlertsByZone(ctx, zone)
	if err != nil {
		c.logger.WarnContext(ctx, "nws alerts unavailable", "zone", zone, "error", err)
		return []models.Alert{}
	}
	return alerts
}

// GetOfficeInfo fetches forecast office attribution
func (c *NWSClient) GetOfficeInfo(ctx context.Context, officeID string) (*models.OfficeInfo, error) {
	var resp officeResponse
	if err := c.GetJSON(ctx, fmt.Sprintf("%s/offices/%s", c.baseURL, officeID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get office %s: %w", officeID, err)
	}
	return &models.OfficeInfo{
		ID:    officeID,
		Name:  resp.Name,
		City:  resp.Address.AddressLocality,
		State: resp.Address.AddressRegion,
	}, nil
}

// FetchDay resolves the point, then fetches grid data, zone alerts and office
// info concurrently and reduces the grid to daily values for in.Date. Only a
// points or gridpoints failure is returned as an error.
func (c *NWSClient) FetchDay(ctx context.Context, in models.DayInputs) (*GridDay, error) {
	point, err := c.GetPointMetadata(ctx, in.Lat, in.Lon)
	if err != nil {
		return nil, err
	}

	var (
		g      errgroup.Group
		grid   *GridData
		alerts []models.Alert
		office *models.OfficeInfo
	)
	g.Go(func() error {
		var err error
		grid, err = c.GetGridData(ctx, point.GridID, point.GridX, point.GridY)
		return err
	})
	g.Go(func() error {
		alerts = c.GetActiveAlerts(ctx, point.ForecastZone)
		return nil
	})
	g.Go(func() error {
		office = c.lookupOffice(ctx, point)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loc := loadLocation(point.TimeZone)
	day := &GridDay{
		Observation: grid.observation(in.Date, loc),
		Trend:       barometricTrend(grid.Pressure.Values, in.Date),
		Marine:      grid.marine(in.Date, loc),
		Alerts:      alerts,
		Office:      office,
	}
	return day, nil
}

// lookupOffice falls back to the point's relative location when the office
// endpoint fails.
func (c *NWSClient) lookupOffice(ctx context.Context, point *PointMetadata) *models.OfficeInfo {
	if point.ForecastOffice == "" {
		return nil
	}
	office, err := c.GetOfficeInfo(ctx, point.ForecastOffice)
	if err != nil {
		c.logger.DebugContext(ctx, "nws office lookup failed", "office", point.ForecastOffice, "error", err)
		return &models.OfficeInfo{ID: point.ForecastOffice, City: point.City, State: point.State}
	}
	return office
}

func lastSegment(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Internal types for NWS API responses

type pointResponse struct {
	Properties struct {
		GridID           string `json:"gridId"`
		GridX            int    `json:"gridX"`
		GridY            int    `json:"gridY"`
		ForecastOffice   string `json:"forecastOffice"`
		ForecastZone     string `json:"forecastZone"`
		TimeZone         string `json:"timeZone"`
		RelativeLocation struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

type gridpointResponse struct {
	Properties GridData `json:"properties"`
}

type officeResponse struct {
	Name    string `json:"name"`
	Address struct {
		AddressLocality string `json:"addressLocality"`
		AddressRegion   string `json:"addressRegion"`
	} `json:"address"`
}
