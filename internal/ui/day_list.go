package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// dayItem wraps a ForecastScore for use in a list
type dayItem struct {
	day models.ForecastScore
}

// FilterValue implements list.Item
func (d dayItem) FilterValue() string {
	return d.day.Date
}

// Title implements list.DefaultItem
func (d dayItem) Title() string {
	return fmt.Sprintf("%s  %5.1f  %s", formatDate(d.day.Date), d.day.BiteScore, d.day.Weather.Safety.Rating)
}

// Description implements list.DefaultItem
func (d dayItem) Description() string {
	return fmt.Sprintf("%s, %.0f°C, wind %.0f km/h, %s",
		d.day.Moon.PhaseName, d.day.Weather.TempC, d.day.Weather.WindKph, trendLabel(d.day.Weather.BarometricTrend))
}

// createDayList creates a list.Model from forecast days
func createDayList(days []models.ForecastScore, width, height int) list.Model {
	items := make([]list.Item, len(days))
	for i, day := range days {
		items[i] = dayItem{day: day}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Forecast"
	l.SetShowHelp(true)
	l.SetFilteringEnabled(false)

	return l
}
