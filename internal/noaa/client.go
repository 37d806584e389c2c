// Package noaa talks to the National Weather Service API (grid forecasts,
// alerts, offices) and the CO-OPS Tides and Currents APIs (station metadata,
// tide predictions, latest marine samples).
package noaa

import (
	"context"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/geo"
)

// Default endpoints
const (
	DefaultNWSBaseURL       = "https://api.weather.gov"
	DefaultDatagetterURL    = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	DefaultMetadataURL      = "https://api.tidesandcurrents.noaa.gov/mdapi/prod/webapi"
	DefaultNWSTimeout       = 15 * time.Second
	DefaultCOOPSTimeout     = 15 * time.Second
	coopsApplicationName    = "FishingForecast"
	coopsTimeLayout         = "2006-01-02 15:04"
	coopsDateLayout         = "20060102"
	nwsAcceptHeader         = "application/geo+json"
	alertCacheDuration      = 5 * time.Minute
	predictionsProduct      = "predictions"
	waveHeightProduct       = "waveheight"
	windProduct             = "wind"
	waterTemperatureProduct = "water_temperature"
)

// Station types in search priority order. Inland and Great Lakes stations
// rarely publish tide predictions, so those come last.
var StationTypes = []string{"waterlevels", "meteorology", "wind", "watertemperature", "tidepredictions"}

// SearchDeltas are the bounding-box half-widths tried for each station type
var SearchDeltas = []float64{0.3, 0.6, 1.0, 1.5, 2.5}

// Station is a CO-OPS station
type Station struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	State string  `json:"state,omitempty"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lng"`
}

// StationSource lists stations of one type inside a bounding box
type StationSource interface {
	Search(ctx context.Context, stationType string, box geo.BoundingBox) ([]Station, error)
}

// ProductSource lists the data products a station publishes
type ProductSource interface {
	StationProducts(ctx context.Context, stationID string) (map[string]bool, error)
}
