package models

import "time"

// DateLayout is the calendar date format used throughout the forecast
const DateLayout = "2006-01-02"

// DayInputs identifies one forecast request: a point and a calendar date
type DayInputs struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Date string  `json:"date"` // YYYY-MM-DD
}

// DayStart returns midnight UTC of the requested date
func (d DayInputs) DayStart() (time.Time, error) {
	return time.Parse(DateLayout, d.Date)
}

// MoonData describes the moon for a date
type MoonData struct {
	PhaseAngleDeg float64 `json:"phaseAngleDeg"` // [0,360)
	Illumination  float64 `json:"illumination"`  // [0,1]
	PhaseName     string  `json:"phaseName"`
}

// AlmanacData is an optional external fishing rating for a day
type AlmanacData struct {
	Rating01 *float64 `json:"rating01,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// ScoreComponents holds each signal's contribution to the bite score
type ScoreComponents struct {
	Moon    float64  `json:"moon"`
	Weather float64  `json:"weather"`
	Almanac *float64 `json:"almanac,omitempty"`
}

// Sum adds the components together
func (c ScoreComponents) Sum() float64 {
	total := c.Moon + c.Weather
	if c.Almanac != nil {
		total += *c.Almanac
	}
	return total
}

// AstronomicalTimes are the sun and moon events for a date, in UTC
type AstronomicalTimes struct {
	Sunrise   *time.Time `json:"sunrise,omitempty"`
	Sunset    *time.Time `json:"sunset,omitempty"`
	SolarNoon time.Time  `json:"solarNoon"`
	Moonrise  *time.Time `json:"moonrise,omitempty"`
	Moonset   *time.Time `json:"moonset,omitempty"`
}

// Period is a time window
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SolunarTimes are the predicted feeding windows for a date
type SolunarTimes struct {
	MajorPeriods []Period `json:"majorPeriods"`
	MinorPeriods []Period `json:"minorPeriods"`
	DayRating    int      `json:"dayRating"` // 0-4
}

// ForecastScore is the complete forecast for one date
type ForecastScore struct {
	Date         string             `json:"date"`
	Moon         MoonData           `json:"moon"`
	Weather      EnhancedWeather    `json:"weather"`
	Almanac      AlmanacData        `json:"almanac"`
	BiteScore    float64            `json:"biteScore0100"`
	Components   ScoreComponents    `json:"components"`
	Astronomical *AstronomicalTimes `json:"astronomical,omitempty"`
	Solunar      *SolunarTimes      `json:"solunar,omitempty"`
}
