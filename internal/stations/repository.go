// Package stations keeps an offline copy of the CO-OPS station catalog in
// sqlite so station discovery can run without the metadata API.
package stations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/ngmaloney/bite-forecast/internal/geo"
	"github.com/ngmaloney/bite-forecast/internal/noaa"
)

// ErrNotFound is returned when a station id is not in the catalog
var ErrNotFound = errors.New("station not found")

// StationInfo is a catalog station with its distance from a search point
type StationInfo struct {
	noaa.Station
	Type       string
	DistanceKm float64
}

// Catalog answers station searches from the local database. It satisfies
// noaa.StationSource.
type Catalog struct {
	db *sql.DB
}

// NewCatalog wraps an open database. The schema must already be provisioned.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// Search lists stations of stationType inside box
func (c *Catalog) Search(ctx context.Context, stationType string, box geo.BoundingBox) ([]noaa.Station, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, state, latitude, longitude
		FROM coops_stations
		WHERE station_type = ?
		  AND latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
		ORDER BY id
	`, stationType, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("querying %s stations: %w", stationType, err)
	}
	defer rows.Close()

	var found []noaa.Station
	for rows.Next() {
		var s noaa.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.State, &s.Lat, &s.Lon); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		found = append(found, s)
	}
	return found, rows.Err()
}

// FindNearby returns stations of any type within maxKm of the point,
// nearest first. A station listed under several types appears once per type.
func (c *Catalog) FindNearby(ctx context.Context, lat, lon, maxKm float64) ([]StationInfo, error) {
	// 1 degree of latitude is ~111 km; pad the box so the edges are not missed
	delta := maxKm / 111.0 * 1.5
	box := geo.BoxAround(lat, lon, delta)

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, station_type, name, state, latitude, longitude
		FROM coops_stations
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
	`, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var nearby []StationInfo
	for rows.Next() {
		var info StationInfo
		if err := rows.Scan(&info.ID, &info.Type, &info.Name, &info.State, &info.Lat, &info.Lon); err != nil {
			continue
		}
		info.DistanceKm = geo.HaversineKm(lat, lon, info.Lat, info.Lon)
		if info.DistanceKm <= maxKm {
			nearby = append(nearby, info)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stations: %w", err)
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby, nil
}

// GetStationByID returns one catalog entry of the given type
func (c *Catalog) GetStationByID(ctx context.Context, stationType, id string) (*StationInfo, error) {
	info := StationInfo{Type: stationType}
	err := c.db.QueryRowContext(ctx,
		"SELECT id, name, state, latitude, longitude FROM coops_stations WHERE id = ? AND station_type = ?",
		id, stationType,
	).Scan(&info.ID, &info.Name, &info.State, &info.Lat, &info.Lon)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s station %s", ErrNotFound, stationType, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying station by ID: %w", err)
	}
	return &info, nil
}

// Count returns the number of catalog rows
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM coops_stations").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting stations: %w", err)
	}
	return n, nil
}
