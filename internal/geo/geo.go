// Package geo provides distance math and the regional predicates that decide
// which providers apply to a point.
package geo

import (
	"fmt"
	"math"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

const (
	earthRadiusKm    = 6371.0
	earthRadiusMiles = 3959.0
)

// BoundingBox is an axis-aligned lat/lon rectangle
type BoundingBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// BoxAround returns the box extending delta degrees on every side of a point
func BoxAround(lat, lon, delta float64) BoundingBox {
	return BoundingBox{
		MinLat: lat - delta,
		MinLon: lon - delta,
		MaxLat: lat + delta,
		MaxLon: lon + delta,
	}
}

// Contains reports whether the point lies inside the box, edges included
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// HaversineKm calculates great-circle distance in kilometres
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return earthRadiusKm * centralAngle(lat1, lon1, lat2, lon2)
}

// HaversineMiles calculates great-circle distance in miles
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	return earthRadiusMiles * centralAngle(lat1, lon1, lat2, lon2)
}

func centralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// IsPrimaryEligible reports whether a point falls inside the rough US box
// served by the NWS grid forecast.
func IsPrimaryEligible(lat, lon float64) bool {
	return lat >= 24 && lat <= 71 && lon >= -179 && lon <= -66
}

// IsMarineLocation reports whether a point is near a US coast or the Great
// Lakes, where CO-OPS stations are worth querying.
func IsMarineLocation(lat, lon float64) bool {
	eastCoast := lon > -85 && lat > 24 && lat < 45
	westCoast := lon < -115 && lat > 32 && lat < 49
	gulfCoast := lat > 25 && lat < 31 && lon > -98 && lon < -80
	greatLakes := lat > 40 && lat < 49 && lon > -93 && lon < -76
	return eastCoast || westCoast || gulfCoast || greatLakes
}

// ValidateNorthAmerica rejects coordinates outside the supported region
func ValidateNorthAmerica(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return fmt.Errorf("%w: coordinates must be numbers", models.ErrOutOfDomain)
	}
	if lat < 14 || lat > 83 || lon < -180 || lon > -50 {
		return fmt.Errorf("%w: %.4f, %.4f is outside North America", models.ErrOutOfDomain, lat, lon)
	}
	return nil
}
