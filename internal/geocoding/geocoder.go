// Package geocoding resolves a location query (zipcode, "City, ST", a
// "lat,lon" pair or free text) to coordinates.
package geocoding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotFound is returned when no source knows the query
var ErrNotFound = errors.New("location not found")

var (
	zipcodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	coordPattern   = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)$`)
)

// Location represents a geocoded location
type Location struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// Geocoder checks the local zipcode table first and falls back to Nominatim
// for anything the table cannot answer. Either source may be nil.
type Geocoder struct {
	db        *sql.DB
	nominatim *Nominatim
}

// NewGeocoder creates a new geocoder
func NewGeocoder(db *sql.DB, nominatim *Nominatim) *Geocoder {
	return &Geocoder{db: db, nominatim: nominatim}
}

// Geocode converts a query (zipcode, city/state, coordinates, etc.) to coordinates
func (g *Geocoder) Geocode(ctx context.Context, query string) (*Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	if loc, ok := parseCoordinates(query); ok {
		return loc, nil
	}

	if isZipcode(query) {
		if g.db == nil {
			return nil, fmt.Errorf("%w: zipcode table not available", ErrNotFound)
		}
		return lookupZipcodeInDB(ctx, g.db, query[:5])
	}

	// "City, ST" goes to the local table before the network
	if city, state, ok := splitCityState(query); ok && g.db != nil {
		loc, err := lookupCityStateInDB(ctx, g.db, city, state)
		if err == nil {
			return loc, nil
		}
		if !errors.Is(err, ErrNotFound) || g.nominatim == nil {
			return nil, err
		}
	}

	if g.nominatim == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, query)
	}
	return g.nominatim.Search(ctx, query)
}

// isZipcode checks if a string looks like a US zipcode
func isZipcode(s string) bool {
	// Match 5-digit or 9-digit (with hyphen) zipcodes
	return zipcodePattern.MatchString(s)
}

func parseCoordinates(s string) (*Location, bool) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lon, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, false
	}
	return &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      fmt.Sprintf("%.4f, %.4f", lat, lon),
	}, true
}

// splitCityState accepts "City, ST" or "City, State"
func splitCityState(s string) (string, string, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", false
	}
	city := strings.TrimSpace(parts[0])
	state := strings.TrimSpace(parts[1])
	if city == "" || state == "" {
		return "", "", false
	}
	return city, state, true
}
