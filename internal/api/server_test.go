package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/bite-forecast/internal/almanac"
	"github.com/ngmaloney/bite-forecast/internal/geo"
	"github.com/ngmaloney/bite-forecast/internal/models"
	"github.com/ngmaloney/bite-forecast/internal/observability"
)

type fakeForecaster struct {
	gotLat, gotLon float64
	gotStart       string
	gotDays        int
	gotSrc         almanac.Source
	err            error
}

func (f *fakeForecaster) GenerateForecast(ctx context.Context, lat, lon float64, start string, days int, src almanac.Source) ([]models.ForecastScore, error) {
	f.gotLat, f.gotLon, f.gotStart, f.gotDays, f.gotSrc = lat, lon, start, days, src
	if f.err != nil {
		return nil, f.err
	}
	if err := geo.ValidateNorthAmerica(lat, lon); err != nil {
		return nil, err
	}
	out := make([]models.ForecastScore, days)
	for i := range out {
		out[i] = models.ForecastScore{Date: fmt.Sprintf("2025-10-%02d", 20+i), BiteScore: 61.5}
	}
	return out, nil
}

func (f *fakeForecaster) MaxDays() int  { return 16 }
func (f *fakeForecaster) Today() string { return "2025-10-20" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestForecast_OK(t *testing.T) {
	f := &fakeForecaster{}
	src, err := almanac.ParseFile([]byte(`{}`))
	require.NoError(t, err)
	s := NewServer(f, WithLogger(quietLogger()), WithAlmanac(src))

	rec := get(t, s, "/v1/forecast?lat=40.7128&lon=-74.006&start=2025-10-21&days=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ForecastResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Days, 3)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "2025-10-21", resp.StartDate)

	assert.Equal(t, 40.7128, f.gotLat)
	assert.Equal(t, -74.006, f.gotLon)
	assert.Equal(t, 3, f.gotDays)
	assert.Same(t, src, f.gotSrc)
}

func TestForecast_Defaults(t *testing.T) {
	f := &fakeForecaster{}
	s := NewServer(f, WithLogger(quietLogger()))

	rec := get(t, s, "/v1/forecast?lat=40.7&lon=-74")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-10-20", f.gotStart)
	assert.Equal(t, 1, f.gotDays)
}

func TestForecast_UniqueRunIDs(t *testing.T) {
	s := NewServer(&fakeForecaster{}, WithLogger(quietLogger()))

	var first, second ForecastResponse
	require.NoError(t, json.NewDecoder(get(t, s, "/v1/forecast?lat=40.7&lon=-74").Body).Decode(&first))
	require.NoError(t, json.NewDecoder(get(t, s, "/v1/forecast?lat=40.7&lon=-74").Body).Decode(&second))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestForecast_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"missing lat", "/v1/forecast?lon=-74", CodeInvalidParameter},
		{"non-numeric lon", "/v1/forecast?lat=40&lon=west", CodeInvalidParameter},
		{"latitude past pole", "/v1/forecast?lat=91&lon=-74", CodeInvalidParameter},
		{"malformed start", "/v1/forecast?lat=40&lon=-74&start=10/20/2025", CodeInvalidParameter},
		{"zero days", "/v1/forecast?lat=40&lon=-74&days=0", CodeInvalidParameter},
		{"fractional days", "/v1/forecast?lat=40&lon=-74&days=1.5", CodeInvalidParameter},
		{"outside north america", "/v1/forecast?lat=51.5&lon=-0.12", CodeOutOfDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&fakeForecaster{}, WithLogger(quietLogger()))
			rec := get(t, s, tt.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestForecast_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"date range", fmt.Errorf("%w: days must be 1..16", models.ErrInvalidDateRange), http.StatusBadRequest, CodeInvalidDateRange},
		{"domain", models.ErrOutOfDomain, http.StatusBadRequest, CodeOutOfDomain},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&fakeForecaster{err: tt.err}, WithLogger(quietLogger()))
			rec := get(t, s, "/v1/forecast?lat=40&lon=-74")
			require.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, resp.Error.Message, "boom")
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	s := NewServer(&fakeForecaster{}, WithLogger(quietLogger()))
	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	healthy := Probe{Name: "catalog", Check: func(context.Context) error { return nil }}
	broken := Probe{Name: "zipcodes", Check: func(context.Context) error { return errors.New("database is locked") }}

	s := NewServer(&fakeForecaster{}, WithLogger(quietLogger()), WithProbes(healthy))
	rec := get(t, s, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	s = NewServer(&fakeForecaster{}, WithLogger(quietLogger()), WithProbes(healthy, broken))
	rec = get(t, s, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp healthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, CodeNotReady, resp.Status)
	assert.Equal(t, "ok", resp.Components["catalog"])
	assert.Equal(t, "database is locked", resp.Components["zipcodes"])
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetricsWithRegistry(reg)
	m.ObserveFusion("primary")

	s := NewServer(&fakeForecaster{}, WithLogger(quietLogger()),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bite_forecast_fusion_outcomes_total{stage="primary"} 1`)
}

func TestMetricsEndpoint_NotMounted(t *testing.T) {
	s := NewServer(&fakeForecaster{}, WithLogger(quietLogger()))
	assert.Equal(t, http.StatusNotFound, get(t, s, "/metrics").Code)
}

func TestRecoversFromPanic(t *testing.T) {
	s := NewServer(&fakeForecaster{}, WithLogger(quietLogger()))
	s.router.Get("/panic", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	assert.Equal(t, http.StatusInternalServerError, get(t, s, "/panic").Code)
}
