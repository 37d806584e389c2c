package noaa

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/geo"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// MetadataClient reads the CO-OPS metadata API (MDAPI)
type MetadataClient struct {
	*external.BaseClient
	baseURL string
}

// NewMetadataClient creates an MDAPI client. An empty baseURL uses the
// public endpoint.
func NewMetadataClient(baseURL string, opts ...external.Option) *MetadataClient {
	if baseURL == "" {
		baseURL = DefaultMetadataURL
	}
	return &MetadataClient{
		BaseClient: external.NewBaseClient("coops-mdapi", DefaultCOOPSTimeout, opts...),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Search lists stations of stationType inside box
func (c *MetadataClient) Search(ctx context.Context, stationType string, box geo.BoundingBox) ([]Station, error) {
	params := url.Values{}
	params.Set("type", stationType)
	params.Set("bbox", formatBBox(box))
	params.Set("units", "metric")

	var resp stationsResponse
	if err := c.GetJSON(ctx, c.baseURL+"/stations.json", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search %s stations: %w", stationType, err)
	}
	return resp.Stations, nil
}

// ListStations returns every station of stationType, used to mirror the
// catalog into the local database.
func (c *MetadataClient) ListStations(ctx context.Context, stationType string) ([]Station, error) {
	params := url.Values{}
	params.Set("type", stationType)
	params.Set("units", "metric")

	var resp stationsResponse
	if err := c.GetJSON(ctx, c.baseURL+"/stations.json", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to list %s stations: %w", stationType, err)
	}
	return resp.Stations, nil
}

// StationProducts returns the normalized names of the products a station
// publishes. Tide predictions are always included.
func (c *MetadataClient) StationProducts(ctx context.Context, stationID string) (map[string]bool, error) {
	params := url.Values{}
	params.Set("expand", "products")

	var resp stationDetailResponse
	if err := c.GetJSON(ctx, fmt.Sprintf("%s/stations/%s.json", c.baseURL, stationID), params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch products for station %s: %w", stationID, err)
	}

	products := map[string]bool{predictionsProduct: true}
	for _, st := range resp.Stations {
		for _, p := range st.Products.Products {
			label := p.ID
			if label == "" {
				label = p.Name
			}
			if name := NormalizeProductName(label); name != "" {
				products[name] = true
			}
		}
	}
	return products, nil
}

// NormalizeProductName lowercases a product label and collapses runs of
// other characters to underscores, so "Water Temperature" becomes
// "water_temperature".
func NormalizeProductName(name string) string {
	n := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(n, "_")
}

// formatBBox renders minLon,minLat,maxLon,maxLat clamped to valid ranges
func formatBBox(b geo.BoundingBox) string {
	return fmt.Sprintf("%g,%g,%g,%g",
		clamp(b.MinLon, -180, 180),
		clamp(b.MinLat, -90, 90),
		clamp(b.MaxLon, -180, 180),
		clamp(b.MaxLat, -90, 90))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Internal types for MDAPI responses

type stationsResponse struct {
	Stations []Station `json:"stations"`
}

type stationDetailResponse struct {
	Stations []struct {
		ID       string `json:"id"`
		Products struct {
			Products []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"products"`
		} `json:"products"`
	} `json:"stations"`
}
