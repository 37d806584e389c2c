package ui

import (
	"fmt"
	"strings"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// renderMarine shows station data and the day's tide events
func renderMarine(m *models.MarineObservation) string {
	if m == nil {
		return mutedStyle.Render("No marine data for this location")
	}

	var lines []string
	if m.StationName != "" {
		station := fmt.Sprintf("%s (%s)", m.StationName, m.StationID)
		if m.StationDistanceKm != nil {
			station += fmt.Sprintf(", %.1f km away", *m.StationDistanceKm)
		}
		lines = append(lines, mutedStyle.Render(station))
	}
	if m.WaveHeightM != nil {
		lines = append(lines, labelStyle.Render("Waves: ")+valueStyle.Render(fmt.Sprintf("%.1f m (%.1f ft)", *m.WaveHeightM, *m.WaveHeightM*3.28084)))
	}
	if m.WaterTempC != nil {
		lines = append(lines, labelStyle.Render("Water: ")+valueStyle.Render(fmt.Sprintf("%.1f°C", *m.WaterTempC)))
	}
	if m.WindSpeedKph != nil {
		wind := formatWind(*m.WindSpeedKph)
		if m.WindDirectionText != "" {
			wind = m.WindDirectionText + " " + wind
		}
		lines = append(lines, labelStyle.Render("Station wind: ")+valueStyle.Render(wind))
	}
	if m.VisibilityM != nil {
		lines = append(lines, labelStyle.Render("Visibility: ")+valueStyle.Render(fmt.Sprintf("%.1f km", *m.VisibilityM/1000)))
	}

	if len(m.TideEvents) > 0 {
		lines = append(lines, labelStyle.Render("Tides:"))
		for _, event := range m.TideEvents {
			typeStr := "Low "
			if event.Type == models.TideHigh {
				typeStr = "High"
			}
			lines = append(lines, fmt.Sprintf("  %s  %s  %.2f m",
				valueStyle.Render(formatClock(event.Time)),
				typeStr,
				event.HeightMeters))
		}
	}

	if len(lines) == 0 {
		return mutedStyle.Render("No marine data for this location")
	}
	return strings.Join(lines, "\n")
}

// renderSolunar shows sun and moon times and the feeding periods
func renderSolunar(day models.ForecastScore) string {
	var lines []string
	if a := day.Astronomical; a != nil {
		lines = append(lines,
			fmt.Sprintf("Sunrise %s  Sunset %s", formatClockPtr(a.Sunrise), formatClockPtr(a.Sunset)),
			fmt.Sprintf("Moonrise %s  Moonset %s", formatClockPtr(a.Moonrise), formatClockPtr(a.Moonset)),
		)
	}
	lines = append(lines, fmt.Sprintf("Moon: %s, %.0f%% illuminated", day.Moon.PhaseName, day.Moon.Illumination*100))

	if s := day.Solunar; s != nil {
		lines = append(lines, labelStyle.Render("Major: ")+formatPeriods(s.MajorPeriods))
		lines = append(lines, labelStyle.Render("Minor: ")+formatPeriods(s.MinorPeriods))
		lines = append(lines, labelStyle.Render("Solunar rating: ")+stars(s.DayRating))
	}
	return strings.Join(lines, "\n")
}

func formatPeriods(periods []models.Period) string {
	if len(periods) == 0 {
		return "none"
	}
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = formatClock(p.Start) + "-" + formatClock(p.End)
	}
	return strings.Join(parts, ", ")
}
