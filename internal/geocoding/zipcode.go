package geocoding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// lookupZipcodeInDB looks up a zipcode in the provided database connection
func lookupZipcodeInDB(ctx context.Context, db *sql.DB, zipcode string) (*Location, error) {
	var city, state string
	var lat, lon float64

	err := db.QueryRowContext(ctx,
		"SELECT city, state, latitude, longitude FROM zipcodes WHERE zipcode = ?",
		zipcode,
	).Scan(&city, &state, &lat, &lon)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: zipcode %s", ErrNotFound, zipcode)
	}
	if err != nil {
		return nil, fmt.Errorf("querying zipcode: %w", err)
	}

	return &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      fmt.Sprintf("%s, %s %s", city, state, zipcode),
	}, nil
}

// lookupCityStateInDB looks up a city and state in the provided database connection.
// If multiple zipcodes match, returns the first one (by zipcode).
func lookupCityStateInDB(ctx context.Context, db *sql.DB, city, state string) (*Location, error) {
	var zipcode, foundCity, foundState string
	var lat, lon float64

	err := db.QueryRowContext(ctx,
		"SELECT zipcode, city, state, latitude, longitude FROM zipcodes WHERE city = ? COLLATE NOCASE AND state = ? COLLATE NOCASE ORDER BY zipcode LIMIT 1",
		city, state,
	).Scan(&zipcode, &foundCity, &foundState, &lat, &lon)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s, %s", ErrNotFound, city, state)
	}
	if err != nil {
		// a missing zipcodes table behaves like an empty one
		if exists, tErr := tableExists(db); tErr == nil && !exists {
			return nil, fmt.Errorf("%w: %s, %s", ErrNotFound, city, state)
		}
		return nil, fmt.Errorf("querying city/state: %w", err)
	}

	return &Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      fmt.Sprintf("%s, %s %s", foundCity, foundState, zipcode),
	}, nil
}
