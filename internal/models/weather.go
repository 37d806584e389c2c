package models

// WeatherObservation is the daily weather summary for one location, normalized
// from whichever provider produced it.
type WeatherObservation struct {
	TempC       float64  `json:"tempC"`
	WindKph     float64  `json:"windKph"`
	PrecipMm    float64  `json:"precipMm"`
	CloudPct    float64  `json:"cloudPct"`
	PressureHpa *float64 `json:"pressureHpa,omitempty"`
}

// BarometricTrend is the direction of pressure change around midday
type BarometricTrend string

const (
	TrendRising  BarometricTrend = "RISING"
	TrendFalling BarometricTrend = "FALLING"
	TrendSteady  BarometricTrend = "STEADY"
)

// WeatherSource identifies which provider branch produced the weather
type WeatherSource string

const (
	SourcePrimary  WeatherSource = "PRIMARY"
	SourceFallback WeatherSource = "FALLBACK"
)

// OfficeInfo identifies the NWS forecast office responsible for a point
type OfficeInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// EnhancedWeather is the fused daily weather: the base observation plus
// marine overlay, safety assessment and trend.
type EnhancedWeather struct {
	WeatherObservation
	Marine          *MarineObservation `json:"marine,omitempty"`
	Safety          SafetyAssessment   `json:"safety"`
	BarometricTrend BarometricTrend    `json:"barometricTrend"`
	Source          WeatherSource      `json:"source"`
	Office          *OfficeInfo        `json:"office,omitempty"`
}

// FusedWeather is the output of weather fusion. It is either PrimaryWeather
// or FallbackWeather; no other implementations exist.
type FusedWeather interface {
	Enhanced() *EnhancedWeather
	fusedWeather()
}

// PrimaryWeather came from the grid forecast provider with alerts, trend
// and safety derived from real inputs.
type PrimaryWeather struct {
	EnhancedWeather
}

// Enhanced returns the underlying weather record
func (p *PrimaryWeather) Enhanced() *EnhancedWeather { return &p.EnhancedWeather }

func (*PrimaryWeather) fusedWeather() {}

// FallbackWeather came from the global provider or the synthetic default.
// Its safety and trend are placeholders.
type FallbackWeather struct {
	EnhancedWeather
}

// Enhanced returns the underlying weather record
func (f *FallbackWeather) Enhanced() *EnhancedWeather { return &f.EnhancedWeather }

func (*FallbackWeather) fusedWeather() {}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}
