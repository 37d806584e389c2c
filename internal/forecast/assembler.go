// Package forecast assembles multi-day bite forecasts from the ephemeris,
// the fusion engine and the scoring functions.
package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/bite-forecast/internal/almanac"
	"github.com/ngmaloney/bite-forecast/internal/ephemeris"
	"github.com/ngmaloney/bite-forecast/internal/geo"
	"github.com/ngmaloney/bite-forecast/internal/models"
	"github.com/ngmaloney/bite-forecast/internal/scoring"
)

const (
	// DefaultMaxDays matches the longest fallback provider horizon
	DefaultMaxDays = 16

	// DefaultDayConcurrency runs days one after another
	DefaultDayConcurrency = 1
)

// Fuser produces the fused weather for one day
type Fuser interface {
	Fuse(ctx context.Context, in models.DayInputs) models.FusedWeather
}

// Recorder receives the scores of every generated forecast
type Recorder interface {
	ObserveForecast(scores ...float64)
}

// Assembler generates forecasts
type Assembler struct {
	fuser       Fuser
	maxDays     int
	concurrency int
	clock       clockwork.Clock
	recorder    Recorder
	logger      *slog.Logger
}

// Option configures an Assembler
type Option func(*Assembler)

// WithMaxDays caps the number of days per request
func WithMaxDays(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.maxDays = n
		}
	}
}

// WithDayConcurrency sets how many days are processed at once
func WithDayConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock sets the clock used for the default start date
func WithClock(c clockwork.Clock) Option {
	return func(a *Assembler) { a.clock = c }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(a *Assembler) { a.recorder = r }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler creates an Assembler over a fusion engine
func NewAssembler(f Fuser, opts ...Option) *Assembler {
	a := &Assembler{
		fuser:       f,
		maxDays:     DefaultMaxDays,
		concurrency: DefaultDayConcurrency,
		clock:       clockwork.NewRealClock(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxDays returns the largest accepted day count
func (a *Assembler) MaxDays() int {
	return a.maxDays
}

// Today returns the current UTC date
func (a *Assembler) Today() string {
	return a.clock.Now().UTC().Format(models.DateLayout)
}

// GenerateForecast returns one ForecastScore per day starting at
// startDate, in date order. Only ErrOutOfDomain and ErrInvalidDateRange are
// returned; provider failures degrade inside each day. src may be nil.
func (a *Assembler) GenerateForecast(ctx context.Context, lat, lon float64, startDate string, days int, src almanac.Source) ([]models.ForecastScore, error) {
	if err := geo.ValidateNorthAmerica(lat, lon); err != nil {
		return nil, err
	}
	start, err := time.Parse(models.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q must be YYYY-MM-DD", models.ErrInvalidDateRange, startDate)
	}
	if days < 1 || days > a.maxDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d, got %d", models.ErrInvalidDateRange, a.maxDays, days)
	}

	results := make([]models.ForecastScore, days)

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i := 0; i < days; i++ {
		i := i
		in := models.DayInputs{
			Lat:  lat,
			Lon:  lon,
			Date: start.AddDate(0, 0, i).Format(models.DateLayout),
		}
		g.Go(func() error {
			results[i] = a.forecastDay(ctx, in, src)
			return nil
		})
	}
	_ = g.Wait()

	if a.recorder != nil {
		scores := make([]float64, len(results))
		for i, r := range results {
			scores[i] = r.BiteScore
		}
		a.recorder.ObserveForecast(scores...)
	}
	return results, nil
}

func (a *Assembler) forecastDay(ctx context.Context, in models.DayInputs, src almanac.Source) models.ForecastScore {
	// the date is already validated, so the ephemeris cannot fail here
	moon, _ := ephemeris.MoonPhase(in.Date)
	weather := a.fuser.Fuse(ctx, in)
	alm := a.lookupAlmanac(ctx, in, src)

	total, components := scoring.ScoreDay(moon, weather, alm)

	fs := models.ForecastScore{
		Date:       in.Date,
		Moon:       moon,
		Weather:    *weather.Enhanced(),
		Almanac:    alm,
		BiteScore:  total,
		Components: components,
	}
	if astro, err := ephemeris.Astronomical(in.Date, in.Lat, in.Lon); err == nil {
		fs.Astronomical = astro
	}
	if sol, err := ephemeris.Solunar(in.Date, in.Lat, in.Lon, moon); err == nil {
		fs.Solunar = sol
	}

	a.logger.DebugContext(ctx, "scored day",
		"date", in.Date, "bite_score", total, "source", fs.Weather.Source, "safety", fs.Weather.Safety.Rating.String())
	return fs
}

func (a *Assembler) lookupAlmanac(ctx context.Context, in models.DayInputs, src almanac.Source) models.AlmanacData {
	if src == nil {
		return models.AlmanacData{}
	}
	data, err := src.Lookup(ctx, in.Lat, in.Lon, in.Date)
	if err != nil {
		a.logger.WarnContext(ctx, "almanac lookup failed", "date", in.Date, "error", err)
		return models.AlmanacData{}
	}
	if data == nil {
		return models.AlmanacData{}
	}
	return *data
}
