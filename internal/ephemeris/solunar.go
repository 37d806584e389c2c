package ephemeris

import (
	"fmt"
	"sort"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

const (
	majorHalfWidth = time.Hour
	minorHalfWidth = 30 * time.Minute
)

// Astronomical returns sun and moon events for a YYYY-MM-DD date. Moonrise
// and moonset are estimated a quarter lunar day either side of the lunar
// transit and are nil when they fall outside the date.
func Astronomical(date string, lat, lon float64) (*models.AstronomicalTimes, error) {
	dayStart, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidDateRange, err)
	}

	sun := Sun(dayStart, lat, lon)
	transit := lunarTransit(dayStart, sun.SolarNoon, MoonAt(dayStart.Add(12*time.Hour)))

	return &models.AstronomicalTimes{
		Sunrise:   sun.Sunrise,
		Sunset:    sun.Sunset,
		SolarNoon: sun.SolarNoon,
		Moonrise:  inDay(transit.Add(-lunarDay/4), dayStart),
		Moonset:   inDay(transit.Add(lunarDay/4), dayStart),
	}, nil
}

// Solunar returns the feeding periods for a date: two-hour major periods
// centred on the moon overhead and underfoot, one-hour minor periods
// centred on moonrise and moonset.
func Solunar(date string, lat, lon float64, moon models.MoonData) (*models.SolunarTimes, error) {
	dayStart, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidDateRange, err)
	}

	sun := Sun(dayStart, lat, lon)
	transit := lunarTransit(dayStart, sun.SolarNoon, moon)

	out := &models.SolunarTimes{
		MajorPeriods: periodsAround(dayStart, majorHalfWidth, transit, transit.Add(lunarDay/2)),
		MinorPeriods: periodsAround(dayStart, minorHalfWidth, transit.Add(-lunarDay/4), transit.Add(lunarDay/4)),
		DayRating:    DayRating(moon.PhaseAngleDeg),
	}
	return out, nil
}

// lunarTransit estimates when the moon crosses the meridian: it trails the
// sun by the phase fraction of a lunar day.
func lunarTransit(dayStart, solarNoon time.Time, moon models.MoonData) time.Time {
	lag := time.Duration(moon.PhaseAngleDeg / 360 * float64(lunarDay))
	t := solarNoon.Add(lag).Truncate(time.Second)
	if c := inDay(t, dayStart); c != nil {
		return *c
	}
	return t
}

// inDay shifts t by whole lunar days into [dayStart, dayStart+24h), or
// returns nil when no shift lands inside the day.
func inDay(t, dayStart time.Time) *time.Time {
	end := dayStart.Add(24 * time.Hour)
	for k := -2; k <= 2; k++ {
		c := t.Add(time.Duration(k) * lunarDay)
		if !c.Before(dayStart) && c.Before(end) {
			return &c
		}
	}
	return nil
}

func periodsAround(dayStart time.Time, half time.Duration, centres ...time.Time) []models.Period {
	periods := []models.Period{}
	for _, c := range centres {
		t := inDay(c, dayStart)
		if t == nil {
			continue
		}
		periods = append(periods, models.Period{Start: t.Add(-half), End: t.Add(half)})
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})
	return periods
}
