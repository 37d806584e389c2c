package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/bite-forecast/internal/models"
	"github.com/ngmaloney/bite-forecast/internal/safety"
)

const barWidth = 20

// renderDay renders the full detail view for one forecast day
func renderDay(day models.ForecastScore) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(formatDate(day.Date)),
		"  ",
		scoreStyle(day.BiteScore).Render(fmt.Sprintf("Bite score %.1f", day.BiteScore)),
	)

	components := fmt.Sprintf("Moon %.1f/40  Weather %.1f/40", day.Components.Moon, day.Components.Weather)
	if day.Components.Almanac != nil {
		components += fmt.Sprintf("  Almanac %.1f/20", *day.Components.Almanac)
	}

	sections := []string{
		header,
		scoreBar(day.BiteScore) + "  " + mutedStyle.Render(components),
		sectionHeaderStyle.Render("WEATHER"),
		renderWeather(day.Weather),
		sectionHeaderStyle.Render("SAFETY"),
		renderSafety(day.Weather.Safety),
		sectionHeaderStyle.Render("MARINE"),
		renderMarine(day.Weather.Marine),
		sectionHeaderStyle.Render("SUN & MOON"),
		renderSolunar(day),
		sectionHeaderStyle.Render("TIPS"),
		"  - " + strings.Join(safety.FishingTips(&day.Weather), "\n  - "),
	}
	if day.Almanac.Notes != "" {
		sections = append(sections, sectionHeaderStyle.Render("ALMANAC"), day.Almanac.Notes)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// scoreBar draws a fixed-width bar for a 0-100 score
func scoreBar(score float64) string {
	filled := int(score/100*barWidth + 0.5)
	filled = max(0, min(barWidth, filled))
	return scoreStyle(score).Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}

func stars(n int) string {
	n = max(0, min(4, n))
	return strings.Repeat("★", n) + strings.Repeat("☆", 4-n)
}

func formatDate(date string) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Mon Jan 2")
}

func formatClock(t time.Time) string {
	return t.Local().Format("3:04 PM")
}

func formatClockPtr(t *time.Time) string {
	if t == nil {
		return "--"
	}
	return formatClock(*t)
}
