// Package fusion combines the weather providers, the marine station adapter
// and the storm outlook into one FusedWeather per day.
package fusion

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/bite-forecast/internal/geo"
	"github.com/ngmaloney/bite-forecast/internal/models"
	"github.com/ngmaloney/bite-forecast/internal/noaa"
	"github.com/ngmaloney/bite-forecast/internal/safety"
)

// Synthetic default weather used when every provider fails
const (
	DefaultTempC       = 20.0
	DefaultWindKph     = 10.0
	DefaultPrecipMm    = 0.0
	DefaultCloudPct    = 50.0
	DefaultPressureHpa = 1013.25
)

// Fusion stages reported to the Recorder
const (
	StagePrimary  = "primary"
	StageFallback = "fallback"
	StageDefault  = "default"
)

// PrimarySource is the grid forecast provider used inside its coverage area
type PrimarySource interface {
	FetchDay(ctx context.Context, in models.DayInputs) (*noaa.GridDay, error)
}

// FallbackSource is the global provider used when the primary is unavailable
type FallbackSource interface {
	FetchDay(ctx context.Context, in models.DayInputs) (models.WeatherObservation, error)
}

// MarineSource returns station marine data, or nil when no station applies
type MarineSource interface {
	Fetch(ctx context.Context, in models.DayInputs) (*models.MarineObservation, error)
}

// OutlookSource returns the convective outlook covering a point, or nil
type OutlookSource interface {
	FetchOutlook(ctx context.Context, lat, lon float64) (*models.OutlookRisk, error)
}

// Recorder receives fusion outcome counts
type Recorder interface {
	ObserveFusion(stage string)
	ObserveMarine(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFusion(string) {}
func (nopRecorder) ObserveMarine(string) {}

// Engine fuses weather for a single day. Marine and outlook sources are
// optional.
type Engine struct {
	primary  PrimarySource
	fallback FallbackSource
	marine   MarineSource
	outlook  OutlookSource
	clock    clockwork.Clock
	recorder Recorder
	logger   *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithMarine enables the station marine overlay
func WithMarine(m MarineSource) Option {
	return func(e *Engine) { e.marine = m }
}

// WithOutlook enables storm outlook downgrades on primary results
func WithOutlook(o OutlookSource) Option {
	return func(e *Engine) { e.outlook = o }
}

// WithClock sets the clock used to match outlook days
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger used for degradations
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a fusion engine over the two weather providers
func NewEngine(primary PrimarySource, fallback FallbackSource, opts ...Option) *Engine {
	e := &Engine{
		primary:  primary,
		fallback: fallback,
		clock:    clockwork.NewRealClock(),
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fuse returns the fused weather for one day. It never fails: provider
// errors degrade to the fallback provider and then to a synthetic default.
func (e *Engine) Fuse(ctx context.Context, in models.DayInputs) models.FusedWeather {
	eligible := geo.IsPrimaryEligible(in.Lat, in.Lon)

	var (
		fused   models.FusedWeather
		station *models.MarineObservation
		outlook *models.OutlookRisk
	)

	// Each task records its own result; none fails the group.
	var g errgroup.Group
	g.Go(func() error {
		fused = e.weather(ctx, in, eligible)
		return nil
	})
	if e.marine != nil && geo.IsMarineLocation(in.Lat, in.Lon) {
		g.Go(func() error {
			station = e.fetchMarine(ctx, in)
			return nil
		})
	}
	if e.outlook != nil && eligible && e.outlookDay(in.Date) > 0 {
		g.Go(func() error {
			outlook = e.fetchOutlook(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	if p, ok := fused.(*models.PrimaryWeather); ok && outlook != nil && outlook.Day == e.outlookDay(in.Date) {
		safety.ApplyOutlook(&p.Safety, outlook)
	}

	if station != nil {
		ew := fused.Enhanced()
		ew.Marine = ew.Marine.Overlay(station)
		dayStart, err := in.DayStart()
		if err == nil {
			safety.ApplyMarine(&ew.Safety, ew.Marine, dayStart)
		}
	}
	return fused
}

// weather runs the provider chain: primary when eligible, then fallback,
// then the synthetic default.
func (e *Engine) weather(ctx context.Context, in models.DayInputs, eligible bool) models.FusedWeather {
	if eligible && e.primary != nil {
		day, err := e.primary.FetchDay(ctx, in)
		if err == nil {
			e.recorder.ObserveFusion(StagePrimary)
			return primaryWeather(day)
		}
		e.logger.WarnContext(ctx, "primary weather failed, using fallback",
			"provider", "nws", "date", in.Date, "lat", in.Lat, "lon", in.Lon, "error", err)
	}

	if e.fallback != nil {
		obs, err := e.fallback.FetchDay(ctx, in)
		if err == nil {
			e.recorder.ObserveFusion(StageFallback)
			return &models.FallbackWeather{EnhancedWeather: models.EnhancedWeather{
				WeatherObservation: obs,
				Safety:             safety.Default(),
				BarometricTrend:    models.TrendSteady,
				Source:             models.SourceFallback,
			}}
		}
		e.logger.WarnContext(ctx, "fallback weather failed, using defaults",
			"provider", "open-meteo", "date", in.Date, "lat", in.Lat, "lon", in.Lon, "error", err)
	}

	e.recorder.ObserveFusion(StageDefault)
	return SyntheticDefault()
}

func primaryWeather(day *noaa.GridDay) *models.PrimaryWeather {
	return &models.PrimaryWeather{EnhancedWeather: models.EnhancedWeather{
		WeatherObservation: day.Observation,
		Marine:             day.Marine,
		Safety:             safety.Assess(day.Alerts, day.Observation),
		BarometricTrend:    day.Trend,
		Source:             models.SourcePrimary,
		Office:             day.Office,
	}}
}

// SyntheticDefault is the placeholder weather used when no provider answers
func SyntheticDefault() *models.FallbackWeather {
	return &models.FallbackWeather{EnhancedWeather: models.EnhancedWeather{
		WeatherObservation: models.WeatherObservation{
			TempC:       DefaultTempC,
			WindKph:     DefaultWindKph,
			PrecipMm:    DefaultPrecipMm,
			CloudPct:    DefaultCloudPct,
			PressureHpa: models.Float64(DefaultPressureHpa),
		},
		Safety:          safety.Unavailable(),
		BarometricTrend: models.TrendSteady,
		Source:          models.SourceFallback,
	}}
}

func (e *Engine) fetchMarine(ctx context.Context, in models.DayInputs) *models.MarineObservation {
	m, err := e.marine.Fetch(ctx, in)
	switch {
	case err != nil:
		e.recorder.ObserveMarine("error")
		e.logger.WarnContext(ctx, "marine conditions unavailable",
			"provider", "coops", "date", in.Date, "lat", in.Lat, "lon", in.Lon, "error", err)
		return nil
	case m == nil:
		e.recorder.ObserveMarine("empty")
		return nil
	}
	e.recorder.ObserveMarine("merged")
	return m
}

func (e *Engine) fetchOutlook(ctx context.Context, in models.DayInputs) *models.OutlookRisk {
	o, err := e.outlook.FetchOutlook(ctx, in.Lat, in.Lon)
	if err != nil {
		e.logger.WarnContext(ctx, "storm outlook unavailable",
			"provider", "spc", "date", in.Date, "lat", in.Lat, "lon", in.Lon, "error", err)
		return nil
	}
	return o
}

// outlookDay is the SPC day number for date, 1 being today on the engine
// clock. It is 0 for past or unparseable dates.
func (e *Engine) outlookDay(date string) int {
	target, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return 0
	}
	now := e.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := int(target.Sub(today).Hours() / 24)
	if offset < 0 {
		return 0
	}
	return offset + 1
}
