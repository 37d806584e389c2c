package fusion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/bite-forecast/internal/models"
	"github.com/ngmaloney/bite-forecast/internal/noaa"
	"github.com/ngmaloney/bite-forecast/internal/observability"
	"github.com/ngmaloney/bite-forecast/internal/safety"
)

var (
	nyc          = models.DayInputs{Lat: 40.7128, Lon: -74.0060, Date: "2025-10-20"}
	london       = models.DayInputs{Lat: 51.5074, Lon: -0.1278, Date: "2025-10-20"}
	kansasCity   = models.DayInputs{Lat: 39.1, Lon: -94.6, Date: "2025-10-20"}
	errUpstream  = errors.New("upstream down")
	fixedNow     = time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
	discardLog   = slog.New(slog.NewTextHandler(io.Discard, nil))
	calmWeather  = models.WeatherObservation{TempC: 18, WindKph: 8, PrecipMm: 0, CloudPct: 40, PressureHpa: models.Float64(1015)}
	windyWeather = models.WeatherObservation{TempC: 12, WindKph: 35, PrecipMm: 2, CloudPct: 90}
)

type fakePrimary struct {
	day   *noaa.GridDay
	err   error
	calls atomic.Int32
}

func (f *fakePrimary) FetchDay(context.Context, models.DayInputs) (*noaa.GridDay, error) {
	f.calls.Add(1)
	return f.day, f.err
}

type fakeFallback struct {
	obs   models.WeatherObservation
	err   error
	calls atomic.Int32
}

func (f *fakeFallback) FetchDay(context.Context, models.DayInputs) (models.WeatherObservation, error) {
	f.calls.Add(1)
	return f.obs, f.err
}

type fakeMarine struct {
	obs   *models.MarineObservation
	err   error
	calls atomic.Int32
}

func (f *fakeMarine) Fetch(context.Context, models.DayInputs) (*models.MarineObservation, error) {
	f.calls.Add(1)
	return f.obs, f.err
}

type fakeOutlook struct {
	risk  *models.OutlookRisk
	err   error
	calls atomic.Int32
}

func (f *fakeOutlook) FetchOutlook(context.Context, float64, float64) (*models.OutlookRisk, error) {
	f.calls.Add(1)
	return f.risk, f.err
}

func newEngine(p PrimarySource, f FallbackSource, opts ...Option) *Engine {
	opts = append([]Option{
		WithLogger(discardLog),
		WithClock(clockwork.NewFakeClockAt(fixedNow)),
	}, opts...)
	return NewEngine(p, f, opts...)
}

func TestFuse_PrimaryEligible(t *testing.T) {
	primary := &fakePrimary{day: &noaa.GridDay{
		Observation: calmWeather,
		Trend:       models.TrendFalling,
		Office:      &models.OfficeInfo{ID: "OKX", Name: "Upton, NY"},
	}}
	fallback := &fakeFallback{obs: windyWeather}

	got := newEngine(primary, fallback).Fuse(context.Background(), nyc)

	p, ok := got.(*models.PrimaryWeather)
	require.True(t, ok, "want PrimaryWeather, got %T", got)
	assert.Equal(t, models.SourcePrimary, p.Source)
	assert.Equal(t, models.TrendFalling, p.BarometricTrend)
	assert.Equal(t, calmWeather, p.WeatherObservation)
	assert.Equal(t, models.RatingExcellent, p.Safety.Rating)
	assert.Equal(t, "OKX", p.Office.ID)
	assert.Zero(t, fallback.calls.Load())
}

func TestFuse_PrimaryAlertsDriveSafety(t *testing.T) {
	primary := &fakePrimary{day: &noaa.GridDay{
		Observation: calmWeather,
		Trend:       models.TrendSteady,
		Alerts: []models.Alert{{
			Event:    "Gale Warning",
			Headline: "Gale Warning in effect",
			Severity: models.SeveritySevere,
		}},
	}}

	got := newEngine(primary, &fakeFallback{}).Fuse(context.Background(), nyc)
	assert.Equal(t, models.RatingDangerous, got.Enhanced().Safety.Rating)
	assert.Len(t, got.Enhanced().Safety.ActiveAlerts, 1)
}

func TestFuse_IneligibleSkipsPrimary(t *testing.T) {
	primary := &fakePrimary{}
	fallback := &fakeFallback{obs: calmWeather}

	got := newEngine(primary, fallback).Fuse(context.Background(), london)

	f, ok := got.(*models.FallbackWeather)
	require.True(t, ok, "want FallbackWeather, got %T", got)
	assert.Zero(t, primary.calls.Load())
	assert.Equal(t, calmWeather, f.WeatherObservation)
	assert.Equal(t, models.SourceFallback, f.Source)
	assert.Equal(t, models.TrendSteady, f.BarometricTrend)
	assert.Equal(t, models.RatingGood, f.Safety.Rating)
	assert.Empty(t, f.Safety.RiskFactors)
}

func TestFuse_PrimaryFailureFallsBack(t *testing.T) {
	primary := &fakePrimary{err: errUpstream}
	fallback := &fakeFallback{obs: windyWeather}
	metrics := observability.NewMetricsForTesting()

	got := newEngine(primary, fallback, WithRecorder(metrics)).Fuse(context.Background(), nyc)

	f, ok := got.(*models.FallbackWeather)
	require.True(t, ok, "want FallbackWeather, got %T", got)
	assert.Equal(t, windyWeather, f.WeatherObservation)
	assert.Equal(t, models.RatingGood, f.Safety.Rating)
	assert.EqualValues(t, 1, primary.calls.Load(), "no retry")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FusionOutcomes.WithLabelValues(StageFallback)))
}

func TestFuse_CancelledPrimaryIsAFailure(t *testing.T) {
	primary := &fakePrimary{err: context.Canceled}
	fallback := &fakeFallback{obs: calmWeather}

	got := newEngine(primary, fallback).Fuse(context.Background(), nyc)
	assert.IsType(t, &models.FallbackWeather{}, got)
}

func TestFuse_SyntheticDefault(t *testing.T) {
	primary := &fakePrimary{err: errUpstream}
	fallback := &fakeFallback{err: errUpstream}
	metrics := observability.NewMetricsForTesting()

	got := newEngine(primary, fallback, WithRecorder(metrics)).Fuse(context.Background(), nyc)

	f, ok := got.(*models.FallbackWeather)
	require.True(t, ok, "want FallbackWeather, got %T", got)
	assert.Equal(t, 20.0, f.TempC)
	assert.Equal(t, 10.0, f.WindKph)
	assert.Equal(t, 0.0, f.PrecipMm)
	assert.Equal(t, 50.0, f.CloudPct)
	require.NotNil(t, f.PressureHpa)
	assert.Equal(t, 1013.25, *f.PressureHpa)
	assert.Equal(t, models.RatingFair, f.Safety.Rating)
	assert.Equal(t, []string{safety.UnavailableRisk}, f.Safety.RiskFactors)
	assert.Equal(t, []string{safety.UnavailableRecommendation}, f.Safety.Recommendations)
	assert.Equal(t, models.TrendSteady, f.BarometricTrend)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FusionOutcomes.WithLabelValues(StageDefault)))
}

func TestFuse_MarineOverlay(t *testing.T) {
	primary := &fakePrimary{day: &noaa.GridDay{
		Observation: calmWeather,
		Trend:       models.TrendSteady,
		Marine:      &models.MarineObservation{WaveHeightM: models.Float64(0.4), VisibilityM: models.Float64(9000)},
	}}
	marine := &fakeMarine{obs: &models.MarineObservation{
		StationID:    "8518750",
		StationName:  "The Battery",
		WaveHeightM:  models.Float64(2.7),
		WindSpeedKph: models.Float64(20),
		TideEvents: []models.TideEvent{
			{Time: time.Date(2025, 10, 20, 9, 30, 0, 0, time.UTC), Type: models.TideHigh, HeightMeters: 1.46},
		},
	}}
	metrics := observability.NewMetricsForTesting()

	got := newEngine(primary, &fakeFallback{}, WithMarine(marine), WithRecorder(metrics)).Fuse(context.Background(), nyc)

	ew := got.Enhanced()
	require.NotNil(t, ew.Marine)
	assert.Equal(t, "8518750", ew.Marine.StationID)
	assert.Equal(t, 2.7, *ew.Marine.WaveHeightM, "station values overwrite grid values")
	assert.Equal(t, 9000.0, *ew.Marine.VisibilityM, "grid-only values survive")
	assert.Equal(t, models.RatingPoor, ew.Safety.Rating, "2.7m seas downgrade to POOR")
	assert.Contains(t, ew.Safety.Recommendations, "Next high tide: 09:30 UTC (1.46m)")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MarineOverlays.WithLabelValues("merged")))
}

func TestFuse_MarineOverlayOnFallback(t *testing.T) {
	marine := &fakeMarine{obs: &models.MarineObservation{StationID: "x", WaveHeightM: models.Float64(3.2)}}

	got := newEngine(nil, &fakeFallback{obs: calmWeather}, WithMarine(marine)).Fuse(context.Background(), nyc)

	assert.IsType(t, &models.FallbackWeather{}, got)
	assert.Equal(t, models.RatingDangerous, got.Enhanced().Safety.Rating)
}

func TestFuse_MarineSkippedInland(t *testing.T) {
	marine := &fakeMarine{obs: &models.MarineObservation{StationID: "x"}}

	got := newEngine(nil, &fakeFallback{obs: calmWeather}, WithMarine(marine)).Fuse(context.Background(), kansasCity)

	assert.Zero(t, marine.calls.Load())
	assert.Nil(t, got.Enhanced().Marine)
}

func TestFuse_MarineFailureIsNonFatal(t *testing.T) {
	primary := &fakePrimary{day: &noaa.GridDay{Observation: calmWeather, Trend: models.TrendRising}}
	marine := &fakeMarine{err: errUpstream}

	got := newEngine(primary, &fakeFallback{}, WithMarine(marine)).Fuse(context.Background(), nyc)

	assert.IsType(t, &models.PrimaryWeather{}, got)
	assert.Nil(t, got.Enhanced().Marine)
	assert.Equal(t, models.RatingExcellent, got.Enhanced().Safety.Rating)
}

func TestFuse_OutlookAppliedToPrimary(t *testing.T) {
	primary := &fakePrimary{day: &noaa.GridDay{Observation: calmWeather, Trend: models.TrendSteady}}
	outlook := &fakeOutlook{risk: &models.OutlookRisk{Risk: models.RiskModerate, Day: 1}}

	got := newEngine(primary, &fakeFallback{}, WithOutlook(outlook)).Fuse(context.Background(), nyc)

	s := got.Enhanced().Safety
	assert.Equal(t, models.RatingDangerous, s.Rating)
	assert.Contains(t, s.RiskFactors, "SPC Day 1 outlook: MDT")
	require.NotNil(t, s.SPCOutlook)
	assert.Equal(t, models.RiskModerate, s.SPCOutlook.Risk)
}

func TestFuse_OutlookDayMismatchIgnored(t *testing.T) {
	primary := &fakePrimary{day: &noaa.GridDay{Observation: calmWeather, Trend: models.TrendSteady}}
	outlook := &fakeOutlook{risk: &models.OutlookRisk{Risk: models.RiskHigh, Day: 1}}

	tomorrow := nyc
	tomorrow.Date = "2025-10-21"
	got := newEngine(primary, &fakeFallback{}, WithOutlook(outlook)).Fuse(context.Background(), tomorrow)

	assert.Equal(t, models.RatingExcellent, got.Enhanced().Safety.Rating)
	assert.Nil(t, got.Enhanced().Safety.SPCOutlook)
}

func TestFuse_OutlookNotAppliedToFallback(t *testing.T) {
	primary := &fakePrimary{err: errUpstream}
	outlook := &fakeOutlook{risk: &models.OutlookRisk{Risk: models.RiskHigh, Day: 1}}

	got := newEngine(primary, &fakeFallback{obs: calmWeather}, WithOutlook(outlook)).Fuse(context.Background(), nyc)

	assert.Equal(t, models.RatingGood, got.Enhanced().Safety.Rating)
}

func TestFuse_OutlookFailureIgnored(t *testing.T) {
	primary := &fakePrimary{day: &noaa.GridDay{Observation: calmWeather, Trend: models.TrendSteady}}
	outlook := &fakeOutlook{err: errUpstream}

	got := newEngine(primary, &fakeFallback{}, WithOutlook(outlook)).Fuse(context.Background(), nyc)

	assert.Equal(t, models.RatingExcellent, got.Enhanced().Safety.Rating)
}

func TestOutlookDay(t *testing.T) {
	e := newEngine(nil, nil)

	tests := map[string]int{
		"2025-10-20": 1,
		"2025-10-21": 2,
		"2025-10-22": 3,
		"2025-10-19": 0,
		"bad":        0,
	}
	for date, want := range tests {
		assert.Equal(t, want, e.outlookDay(date), date)
	}
}
