package geocoding

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/database"
	"github.com/ngmaloney/bite-forecast/internal/external"
)

const (
	DefaultZipcodeCSVURL = "https://raw.githubusercontent.com/midwire/free_zipcode_data/develop/all_us_zipcodes.csv"
	zipcodeTable         = "zipcodes"
	downloadTimeout      = 2 * time.Minute
)

// NeedsProvisioning reports whether the zipcode table is missing
func NeedsProvisioning(db *sql.DB) (bool, error) {
	exists, err := tableExists(db)
	return !exists, err
}

func tableExists(db *sql.DB) (bool, error) {
	return database.TableExists(db, zipcodeTable)
}

// ProvisionZipcodes downloads the zipcode CSV and loads it into db.
// An empty csvURL uses the public dataset.
func ProvisionZipcodes(ctx context.Context, db *sql.DB, csvURL string, logger *slog.Logger, opts ...external.Option) (int, error) {
	if csvURL == "" {
		csvURL = DefaultZipcodeCSVURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := external.NewBaseClient("zipcodes", downloadTimeout, append([]external.Option{external.WithAccept("text/csv")}, opts...)...)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	logger.InfoContext(ctx, "downloading zipcode data", "url", csvURL)
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading zipcode CSV: %w", err)
	}
	defer resp.Body.Close()

	count, err := LoadZipcodes(ctx, db, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("building zipcode table: %w", err)
	}
	logger.InfoContext(ctx, "provisioned zipcode table", "rows", count)
	return count, nil
}

// LoadZipcodes creates the zipcodes table and inserts the rows of a CSV in
// the free_zipcode_data layout: Zipcode,ZipCodeType,City,State,LocationType,Lat,Long,...
// Rows that do not parse are skipped.
func LoadZipcodes(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS zipcodes (
			zipcode TEXT PRIMARY KEY,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_zipcodes_city_state ON zipcodes(city, state);
	`)
	if err != nil {
		return 0, fmt.Errorf("creating table: %w", err)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO zipcodes (zipcode, city, state, latitude, longitude) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(record) < 7 {
			continue
		}

		lat, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			continue
		}

		res, err := stmt.ExecContext(ctx, record[0], record[2], record[3], lat, lon)
		if err != nil {
			return 0, fmt.Errorf("inserting zipcode %s: %w", record[0], err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return count, nil
}
