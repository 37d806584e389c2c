package noaa

import (
	"sort"
	"strings"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// Neutral values used when the grid omits a field
const (
	defaultTempC    = 20.0
	defaultWindKph  = 10.0
	defaultCloudPct = 50.0
)

// Daylight window, inclusive, in the point's local time
const (
	daylightStartHour = 6
	daylightEndHour   = 18
)

// Barometric trend window and threshold
const (
	trendWindow       = 6 * time.Hour
	trendThresholdPa  = 100.0
	trendAnchorSuffix = "T12:00:00Z"
)

// GridValue is one time-stamped value of a grid layer. ValidTime is an
// ISO 8601 interval such as "2025-10-20T14:00:00+00:00/PT1H".
type GridValue struct {
	ValidTime string   `json:"validTime"`
	Value     *float64 `json:"value"`
}

// GridSeries is one layer of the NWS grid forecast
type GridSeries struct {
	UOM    string      `json:"uom"`
	Values []GridValue `json:"values"`
}

// GridData holds the grid layers this forecaster reads
type GridData struct {
	Temperature                GridSeries `json:"temperature"`
	WindSpeed                  GridSeries `json:"windSpeed"`
	ProbabilityOfPrecipitation GridSeries `json:"probabilityOfPrecipitation"`
	QuantitativePrecipitation  GridSeries `json:"quantitativePrecipitation"`
	SkyCover                   GridSeries `json:"skyCover"`
	Pressure                   GridSeries `json:"pressure"`
	WaveHeight                 GridSeries `json:"waveHeight"`
	PrimarySwellDirection      GridSeries `json:"primarySwellDirection"`
	WaterTemperature           GridSeries `json:"waterTemperature"`
	Visibility                 GridSeries `json:"visibility"`
	WindWaveHeight             GridSeries `json:"windWaveHeight"`
}

type sample struct {
	at    time.Time
	value float64
}

// samples parses the series, dropping null values and unparseable times
func (s GridSeries) samples() []sample {
	out := make([]sample, 0, len(s.Values))
	for _, v := range s.Values {
		if v.Value == nil {
			continue
		}
		start, _, _ := strings.Cut(v.ValidTime, "/")
		at, err := time.Parse(time.RFC3339, start)
		if err != nil {
			continue
		}
		out = append(out, sample{at: at, value: *v.Value})
	}
	return out
}

// dayValues returns the samples whose start falls on date in loc
func (s GridSeries) dayValues(date string, loc *time.Location) []sample {
	var out []sample
	for _, smp := range s.samples() {
		if smp.at.In(loc).Format(models.DateLayout) == date {
			out = append(out, smp)
		}
	}
	return out
}

// DailyValue reduces the series to one value for date: the mean of the
// daylight samples, or the first sample of the day when none fall in
// daylight. ok is false when the day has no samples.
func (s GridSeries) DailyValue(date string, loc *time.Location) (float64, bool) {
	day := s.dayValues(date, loc)
	if len(day) == 0 {
		return 0, false
	}

	var sum float64
	var n int
	for _, smp := range day {
		h := smp.at.In(loc).Hour()
		if h >= daylightStartHour && h <= daylightEndHour {
			sum += smp.value
			n++
		}
	}
	if n == 0 {
		return day[0].value, true
	}
	return sum / float64(n), true
}

// DailySum adds every sample of date
func (s GridSeries) DailySum(date string, loc *time.Location) (float64, bool) {
	day := s.dayValues(date, loc)
	if len(day) == 0 {
		return 0, false
	}
	var sum float64
	for _, smp := range day {
		sum += smp.value
	}
	return sum, true
}

func (s GridSeries) dailyPtr(date string, loc *time.Location) *float64 {
	if v, ok := s.DailyValue(date, loc); ok {
		return models.Float64(v)
	}
	return nil
}

func (g *GridData) observation(date string, loc *time.Location) models.WeatherObservation {
	obs := models.WeatherObservation{
		TempC:    defaultTempC,
		WindKph:  defaultWindKph,
		CloudPct: defaultCloudPct,
	}

	if v, ok := g.Temperature.DailyValue(date, loc); ok {
		obs.TempC = toCelsius(v, g.Temperature.UOM)
	}
	if v, ok := g.WindSpeed.DailyValue(date, loc); ok {
		obs.WindKph = toKph(v, g.WindSpeed.UOM)
	}
	if v, ok := g.SkyCover.DailyValue(date, loc); ok {
		obs.CloudPct = v
	}

	// Measured precipitation when the grid carries it, otherwise the
	// probability scaled down as a rough amount.
	if v, ok := g.QuantitativePrecipitation.DailySum(date, loc); ok {
		obs.PrecipMm = v
	} else if v, ok := g.ProbabilityOfPrecipitation.DailyValue(date, loc); ok {
		obs.PrecipMm = v / 100
	}

	if v, ok := g.Pressure.DailyValue(date, loc); ok {
		obs.PressureHpa = models.Float64(v / 100)
	}
	return obs
}

// marine returns the grid's marine layers for date, or nil when neither
// wave height nor water temperature is forecast.
func (g *GridData) marine(date string, loc *time.Location) *models.MarineObservation {
	m := &models.MarineObservation{
		WaveHeightM:       g.WaveHeight.dailyPtr(date, loc),
		SwellDirectionDeg: g.PrimarySwellDirection.dailyPtr(date, loc),
		VisibilityM:       g.Visibility.dailyPtr(date, loc),
		WindWaveHeightM:   g.WindWaveHeight.dailyPtr(date, loc),
	}
	if v, ok := g.WaterTemperature.DailyValue(date, loc); ok {
		m.WaterTempC = models.Float64(toCelsius(v, g.WaterTemperature.UOM))
	}
	if m.WaveHeightM == nil && m.WaterTempC == nil {
		return nil
	}
	return m
}

// barometricTrend compares the first and last pressure samples within six
// hours of midday UTC on date.
func barometricTrend(values []GridValue, date string) models.BarometricTrend {
	anchor, err := time.Parse(time.RFC3339, date+trendAnchorSuffix)
	if err != nil {
		return models.TrendSteady
	}

	var window []sample
	for _, smp := range (GridSeries{Values: values}).samples() {
		d := smp.at.Sub(anchor)
		if d >= -trendWindow && d <= trendWindow {
			window = append(window, smp)
		}
	}
	if len(window) < 2 {
		return models.TrendSteady
	}

	sort.Slice(window, func(i, j int) bool { return window[i].at.Before(window[j].at) })
	change := window[len(window)-1].value - window[0].value
	switch {
	case change > trendThresholdPa:
		return models.TrendRising
	case change < -trendThresholdPa:
		return models.TrendFalling
	default:
		return models.TrendSteady
	}
}

func toCelsius(v float64, uom string) float64 {
	if strings.HasSuffix(uom, "degF") {
		return (v - 32) * 5 / 9
	}
	return v
}

// toKph converts a grid wind value. Series without a unit are treated as
// metres per second.
func toKph(v float64, uom string) float64 {
	switch {
	case strings.HasSuffix(uom, "km_h-1"):
		return v
	case strings.HasSuffix(uom, "kn"):
		return v * 1.852
	default:
		return v * 3.6
	}
}
