package ui

import (
	"fmt"
	"strings"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// renderWeather shows the fused weather for one day
func renderWeather(w models.EnhancedWeather) string {
	source := "NWS grid forecast"
	if w.Source == models.SourceFallback {
		source = "Open-Meteo (fallback)"
	}
	if w.Office != nil {
		office := w.Office.ID
		if w.Office.Name != "" {
			office = w.Office.Name
		} else if w.Office.City != "" {
			office = fmt.Sprintf("%s, %s", w.Office.City, w.Office.State)
		}
		source += " - " + office
	}

	lines := []string{
		mutedStyle.Render(source),
		labelStyle.Render("Temperature: ") + valueStyle.Render(fmt.Sprintf("%.0f°C (%.0f°F)", w.TempC, w.TempC*9/5+32)),
		labelStyle.Render("Wind: ") + valueStyle.Render(formatWind(w.WindKph)),
		labelStyle.Render("Precipitation: ") + valueStyle.Render(fmt.Sprintf("%.1f mm", w.PrecipMm)),
		labelStyle.Render("Cloud cover: ") + valueStyle.Render(fmt.Sprintf("%.0f%%", w.CloudPct)),
	}

	pressure := "n/a"
	if w.PressureHpa != nil {
		pressure = fmt.Sprintf("%.1f hPa", *w.PressureHpa)
	}
	lines = append(lines, labelStyle.Render("Pressure: ")+valueStyle.Render(fmt.Sprintf("%s, %s", pressure, trendLabel(w.BarometricTrend))))

	return strings.Join(lines, "\n")
}

func formatWind(kph float64) string {
	return fmt.Sprintf("%.0f km/h (%.0f kt)", kph, kph/1.852)
}

func trendLabel(t models.BarometricTrend) string {
	switch t {
	case models.TrendRising:
		return "rising"
	case models.TrendFalling:
		return "falling"
	default:
		return "steady"
	}
}
