// Package ephemeris computes the moon phase, sun and moon rise/set times and
// solunar feeding periods for a date. All times are UTC.
package ephemeris

import (
	"fmt"
	"math"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/models"
	"github.com/ngmaloney/bite-forecast/internal/scoring"
)

const (
	// SynodicMonthDays is the mean length of a lunation
	SynodicMonthDays = 29.530588853

	// lunarDay is the mean interval between successive lunar transits
	lunarDay = 24*time.Hour + 50*time.Minute + 28*time.Second
)

// referenceNewMoon is a known new moon used as the phase epoch
var referenceNewMoon = time.Date(2025, 1, 29, 12, 36, 0, 0, time.UTC)

// MoonPhase returns the moon data for a YYYY-MM-DD date, evaluated at 12:00 UTC
func MoonPhase(date string) (models.MoonData, error) {
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return models.MoonData{}, fmt.Errorf("%w: %v", models.ErrInvalidDateRange, err)
	}
	return MoonAt(day.Add(12 * time.Hour)), nil
}

// MoonAt returns the moon data at an instant. The phase angle is rounded to
// 0.01 degrees and illumination to 0.001.
func MoonAt(t time.Time) models.MoonData {
	age := math.Mod(t.Sub(referenceNewMoon).Hours()/24, SynodicMonthDays)
	if age < 0 {
		age += SynodicMonthDays
	}

	angle := age / SynodicMonthDays * 360
	illumination := 0.5 * (1 - math.Cos(angle*math.Pi/180))

	rounded := math.Round(angle*100) / 100
	if rounded >= 360 {
		rounded = 0
	}
	return models.MoonData{
		PhaseAngleDeg: rounded,
		Illumination:  math.Round(illumination*1000) / 1000,
		PhaseName:     scoring.PhaseNameFromAngle(angle),
	}
}

// DayRating grades a phase 0-4 by its distance from the nearest new or
// full moon.
func DayRating(phaseAngleDeg float64) int {
	a := math.Mod(phaseAngleDeg, 180)
	if a < 0 {
		a += 180
	}
	d := math.Min(a, 180-a)

	switch {
	case d <= 15:
		return 4
	case d <= 30:
		return 3
	case d <= 45:
		return 2
	case d <= 67.5:
		return 1
	default:
		return 0
	}
}
