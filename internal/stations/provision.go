package stations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ngmaloney/bite-forecast/internal/database"
	"github.com/ngmaloney/bite-forecast/internal/noaa"
)

const tableName = "coops_stations"

var provisionMu sync.Mutex

// Lister returns every station of one CO-OPS type. noaa.MetadataClient
// implements it.
type Lister interface {
	ListStations(ctx context.Context, stationType string) ([]noaa.Station, error)
}

// NeedsProvisioning reports whether the catalog table is missing or empty
func NeedsProvisioning(db *sql.DB) (bool, error) {
	exists, err := database.TableExists(db, tableName)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	n, err := NewCatalog(db).Count(context.Background())
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// EnsureSchema creates the catalog table and its indexes
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS coops_stations (
			id TEXT NOT NULL,
			station_type TEXT NOT NULL,
			name TEXT NOT NULL,
			state TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			PRIMARY KEY (id, station_type)
		);
		CREATE INDEX IF NOT EXISTS idx_coops_stations_coords ON coops_stations(station_type, latitude, longitude);
	`)
	if err != nil {
		return fmt.Errorf("creating %s table: %w", tableName, err)
	}
	return nil
}

// Provision mirrors every station of each type into the catalog. Existing
// rows are replaced. A type that fails to download aborts the run so a
// half-built catalog is never committed. progress may be nil.
func Provision(ctx context.Context, db *sql.DB, lister Lister, types []string, progress chan<- string, logger *slog.Logger) (int, error) {
	provisionMu.Lock()
	defer provisionMu.Unlock()

	if logger == nil {
		logger = slog.Default()
	}
	sendProgress := func(msg string) {
		if progress != nil {
			progress <- msg
		}
		logger.InfoContext(ctx, msg)
	}

	if err := EnsureSchema(db); err != nil {
		return 0, err
	}

	byType := make(map[string][]noaa.Station, len(types))
	for _, stationType := range types {
		sendProgress(fmt.Sprintf("Downloading %s stations...", stationType))
		list, err := lister.ListStations(ctx, stationType)
		if err != nil {
			return 0, fmt.Errorf("fetching %s stations: %w", stationType, err)
		}
		byType[stationType] = list
	}

	sendProgress("Building station catalog...")
	count, err := insertStations(ctx, db, types, byType, progress)
	if err != nil {
		return 0, fmt.Errorf("building catalog: %w", err)
	}

	sendProgress(fmt.Sprintf("Successfully provisioned %d catalog entries", count))
	return count, nil
}

func insertStations(ctx context.Context, db *sql.DB, types []string, byType map[string][]noaa.Station, progress chan<- string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // Rollback on error

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO coops_stations (id, station_type, name, state, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, stationType := range types {
		for _, s := range byType[stationType] {
			if s.ID == "" {
				continue
			}
			if _, err := stmt.ExecContext(ctx, s.ID, stationType, s.Name, s.State, s.Lat, s.Lon); err != nil {
				return 0, fmt.Errorf("inserting station %s: %w", s.ID, err)
			}
			count++
			if count%500 == 0 && progress != nil {
				progress <- fmt.Sprintf("Inserted %d stations...", count)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return count, nil
}
