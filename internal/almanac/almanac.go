// Package almanac provides optional third-party fishing ratings that feed
// the almanac component of the bite score.
package almanac

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

const defaultTimeout = 10 * time.Second

// Source looks up the almanac rating for a point and date. A nil result
// with a nil error means the source has nothing for that day.
type Source interface {
	Lookup(ctx context.Context, lat, lon float64, date string) (*models.AlmanacData, error)
}

type entry struct {
	Rating  *float64 `json:"rating"`
	Stars   *float64 `json:"stars"`
	Notes   string   `json:"notes"`
	Summary string   `json:"summary"`
}

// toData normalizes either a 0..1 rating or a 1..5 star count
func (e entry) toData() *models.AlmanacData {
	out := &models.AlmanacData{Notes: e.Notes}
	if out.Notes == "" {
		out.Notes = e.Summary
	}

	switch {
	case e.Rating != nil && !math.IsNaN(*e.Rating):
		out.Rating01 = models.Float64(clamp01(*e.Rating))
	case e.Stars != nil && !math.IsNaN(*e.Stars):
		out.Rating01 = models.Float64(clamp01((*e.Stars - 1) / 4))
	}

	if out.Rating01 == nil && out.Notes == "" {
		return nil
	}
	return out
}

// FileSource serves ratings from a JSON document keyed by date, e.g.
// {"2025-10-20": {"rating": 0.7, "notes": "..."}}. Location is ignored.
type FileSource struct {
	entries map[string]entry
}

// LoadFile reads a FileSource from path
func LoadFile(path string) (*FileSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read almanac file: %w", err)
	}
	return ParseFile(b)
}

// ParseFile builds a FileSource from raw JSON
func ParseFile(b []byte) (*FileSource, error) {
	var entries map[string]entry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("%w: almanac file: %v", models.ErrDataUnparseable, err)
	}
	return &FileSource{entries: entries}, nil
}

// Lookup returns the entry for date, if any
func (s *FileSource) Lookup(_ context.Context, _, _ float64, date string) (*models.AlmanacData, error) {
	e, ok := s.entries[date]
	if !ok {
		return nil, nil
	}
	return e.toData(), nil
}

// APISource queries an HTTP endpoint built from a URL template containing
// {lat}, {lon}, {date} and {key} placeholders.
type APISource struct {
	*external.BaseClient
	template string
	key      string
}

// NewAPISource creates an HTTP almanac source
func NewAPISource(template, key string, opts ...external.Option) *APISource {
	return &APISource{
		BaseClient: external.NewBaseClient("almanac", defaultTimeout, opts...),
		template:   template,
		key:        key,
	}
}

// Lookup calls the endpoint for one day
func (s *APISource) Lookup(ctx context.Context, lat, lon float64, date string) (*models.AlmanacData, error) {
	r := strings.NewReplacer(
		"{lat}", strconv.FormatFloat(lat, 'f', 4, 64),
		"{lon}", strconv.FormatFloat(lon, 'f', 4, 64),
		"{date}", url.QueryEscape(date),
		"{key}", url.QueryEscape(s.key),
	)

	var e entry
	if err := s.GetJSON(ctx, r.Replace(s.template), nil, &e); err != nil {
		return nil, fmt.Errorf("failed to fetch almanac: %w", err)
	}
	return e.toData(), nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
