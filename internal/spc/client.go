// Package spc looks up the Storm Prediction Center categorical convective
// outlook covering a point.
package spc

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

const (
	DefaultBaseURL = "https://mapservices.weather.noaa.gov/vector/rest/services/outlooks/SPC_wx_outlks/MapServer/2/query"
	DefaultTimeout = 10 * time.Second
)

var validRisks = map[models.SPCRisk]bool{
	models.RiskHigh:     true,
	models.RiskModerate: true,
	models.RiskEnhanced: true,
	models.RiskSlight:   true,
	models.RiskMarginal: true,
	models.RiskThunder:  true,
}

// Client queries the NOAA map service hosting SPC outlooks
type Client struct {
	*external.BaseClient
	baseURL string
}

// NewClient creates an outlook client. An empty baseURL uses the public endpoint.
func NewClient(baseURL string, opts ...external.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseClient: external.NewBaseClient("spc", DefaultTimeout, opts...),
		baseURL:    baseURL,
	}
}

// FetchOutlook returns the outlook intersecting the point, preferring the
// day 1 polygon. A nil outlook with a nil error means no outlook covers the
// point; any failure also yields nil so callers can treat it as absent.
func (c *Client) FetchOutlook(ctx context.Context, lat, lon float64) (*models.OutlookRisk, error) {
	params := url.Values{}
	params.Set("f", "json")
	params.Set("where", "1=1")
	params.Set("geometry", fmt.Sprintf("%g,%g", lon, lat))
	params.Set("geometryType", "esriGeometryPoint")
	params.Set("inSR", "4326")
	params.Set("spatialRel", "esriSpatialRelIntersects")
	params.Set("outFields", "OTLK_TYPE,DN")

	var resp queryResponse
	if err := c.GetJSON(ctx, c.baseURL, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to query outlook: %w", err)
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	chosen := resp.Features[0]
	for _, f := range resp.Features {
		if f.Attributes.DN != nil && *f.Attributes.DN == 1 {
			chosen = f
			break
		}
	}

	risk, ok := ParseRisk(chosen.Attributes.OutlookType)
	if !ok {
		return nil, nil
	}
	day := 1
	if chosen.Attributes.DN != nil {
		day = *chosen.Attributes.DN
	}
	return &models.OutlookRisk{Risk: risk, Day: day}, nil
}

// ParseRisk accepts a categorical code such as "SLGT" or a descriptive label
// such as "Slight Risk".
func ParseRisk(raw string) (models.SPCRisk, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	if validRisks[models.SPCRisk(s)] {
		return models.SPCRisk(s), true
	}

	switch {
	case strings.Contains(s, "SLIGHT"):
		return models.RiskSlight, true
	case strings.Contains(s, "ENHANCED"):
		return models.RiskEnhanced, true
	case strings.Contains(s, "MODERATE"):
		return models.RiskModerate, true
	case strings.Contains(s, "MARGINAL"):
		return models.RiskMarginal, true
	case strings.Contains(s, "THUNDER"):
		return models.RiskThunder, true
	}
	return "", false
}

type queryResponse struct {
	Features []struct {
		Attributes struct {
			OutlookType string `json:"OTLK_TYPE"`
			DN          *int   `json:"DN"`
		} `json:"attributes"`
	} `json:"features"`
}
