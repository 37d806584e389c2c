package almanac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

func TestFileSource(t *testing.T) {
	src, err := LoadFile(filepath.Join("testdata", "almanac.json"))
	require.NoError(t, err)

	tests := []struct {
		date   string
		rating *float64
		notes  string
		isNil  bool
	}{
		{date: "2025-10-20", rating: models.Float64(0.7), notes: "Good morning bite"},
		{date: "2025-10-21", rating: models.Float64(1)},
		{date: "2025-10-22", rating: models.Float64(1)},
		{date: "2025-10-23", notes: "No rating today"},
		{date: "2025-10-24", isNil: true},
		{date: "2025-12-25", isNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := src.Lookup(context.Background(), 40.7, -74.0, tt.date)
			require.NoError(t, err)
			if tt.isNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.notes, got.Notes)
			if tt.rating == nil {
				assert.Nil(t, got.Rating01)
			} else {
				require.NotNil(t, got.Rating01)
				assert.InDelta(t, *tt.rating, *got.Rating01, 1e-9)
			}
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.json"))
	assert.Error(t, err)

	_, err = ParseFile([]byte(`[1,2,3]`))
	assert.ErrorIs(t, err, models.ErrDataUnparseable)
}

func TestAPISource(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"stars": 3, "summary": "Fair"}`))
	}))
	defer server.Close()

	src := NewAPISource(server.URL+"/v1/{date}?lat={lat}&lon={lon}&key={key}", "s3cret")
	got, err := src.Lookup(context.Background(), 40.7128, -74.006, "2025-10-20")
	require.NoError(t, err)

	assert.Equal(t, "/v1/2025-10-20", gotPath)
	assert.Equal(t, "lat=40.7128&lon=-74.0060&key=s3cret", gotQuery)
	require.NotNil(t, got)
	assert.InDelta(t, 0.5, *got.Rating01, 1e-9)
	assert.Equal(t, "Fair", got.Notes)
}

func TestAPISource_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewAPISource(server.URL+"?d={date}", "").Lookup(context.Background(), 1, 2, "2025-10-20")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
}
