package geocoding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ngmaloney/bite-forecast/internal/database"
)

const zipCSV = `Zipcode,ZipCodeType,City,State,LocationType,Lat,Long,Location,Decommisioned
02633,STANDARD,CHATHAM,MA,PRIMARY,41.68,-69.96,NA-US-MA-CHATHAM,false
02650,STANDARD,NORTH CHATHAM,MA,PRIMARY,41.70,-69.95,NA-US-MA-NORTH CHATHAM,false
10004,STANDARD,NEW YORK,NY,PRIMARY,40.70,-74.01,NA-US-NY-NEW YORK,false
00000,STANDARD,NOWHERE,XX,PRIMARY,,,NA,false
short,row
`

func zipDB(t *testing.T) *Geocoder {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	n, err := LoadZipcodes(context.Background(), db, strings.NewReader(zipCSV))
	if err != nil {
		t.Fatalf("LoadZipcodes() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("LoadZipcodes() = %d rows, want 3", n)
	}
	return NewGeocoder(db, nil)
}

func TestLookupZipcodeInDB(t *testing.T) {
	g := zipDB(t)

	tests := []struct {
		name    string
		zipcode string
		want    bool // whether we expect a result
	}{
		{"existing zipcode", "02633", true},
		{"non-existent zipcode", "99999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := lookupZipcodeInDB(context.Background(), g.db, tt.zipcode)
			if tt.want {
				if err != nil {
					t.Errorf("lookupZipcodeInDB() error = %v, want nil", err)
					return
				}
				if loc.Name != "CHATHAM, MA 02633" {
					t.Errorf("lookupZipcodeInDB() name = %v, want 'CHATHAM, MA 02633'", loc.Name)
				}
			} else if !errors.Is(err, ErrNotFound) {
				t.Errorf("lookupZipcodeInDB() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestGeocode_Local(t *testing.T) {
	g := zipDB(t)

	tests := []struct {
		query   string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"02633", 41.68, -69.96, false},
		{"02633-1234", 41.68, -69.96, false},
		{"Chatham, MA", 41.68, -69.96, false},
		{"new york, ny", 40.70, -74.01, false},
		{"40.5, -73.2", 40.5, -73.2, false},
		{"Springfield, IL", 0, 0, true},
		{"   ", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			loc, err := g.Geocode(context.Background(), tt.query)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Geocode(%q) expected error", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("Geocode(%q) error = %v", tt.query, err)
			}
			if loc.Latitude != tt.lat || loc.Longitude != tt.lon {
				t.Errorf("Geocode(%q) = %v,%v, want %v,%v", tt.query, loc.Latitude, loc.Longitude, tt.lat, tt.lon)
			}
		})
	}
}

func TestGeocode_FallsBackToNominatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"39.7817","lon":"-89.6501","display_name":"Springfield, Illinois"}]`))
	}))
	defer server.Close()

	g := zipDB(t)
	g.nominatim = NewNominatim(server.URL, nil)

	loc, err := g.Geocode(context.Background(), "Springfield, IL")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if loc.Name != "Springfield, Illinois" {
		t.Errorf("Geocode() name = %q", loc.Name)
	}
}

func TestGeocode_WithoutTable(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	needs, err := NeedsProvisioning(db)
	if err != nil || !needs {
		t.Fatalf("NeedsProvisioning() = %v, %v; want true, nil", needs, err)
	}

	_, err = NewGeocoder(db, nil).Geocode(context.Background(), "Chatham, MA")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Geocode() error = %v, want ErrNotFound", err)
	}
}

func TestProvisionZipcodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(zipCSV))
	}))
	defer server.Close()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	n, err := ProvisionZipcodes(context.Background(), db, server.URL, nil)
	if err != nil {
		t.Fatalf("ProvisionZipcodes() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ProvisionZipcodes() = %d, want 3", n)
	}

	needs, err := NeedsProvisioning(db)
	if err != nil || needs {
		t.Errorf("NeedsProvisioning() = %v, %v; want false, nil", needs, err)
	}
}
