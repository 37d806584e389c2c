package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

var (
	// Color palette
	colorPrimary = lipgloss.Color("#00BFFF") // Deep sky blue
	colorDanger  = lipgloss.Color("#FF6B6B") // Red for alerts
	colorWarning = lipgloss.Color("#FFD93D") // Yellow for warnings
	colorSuccess = lipgloss.Color("#6BCF7F") // Green
	colorMuted   = lipgloss.Color("#6C757D") // Gray
	colorBorder  = lipgloss.Color("#4A90E2") // Border blue

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	// Alert severity styles
	alertExtremeStyle = lipgloss.NewStyle().
				Foreground(colorDanger).
				Bold(true)

	alertSevereStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF8C42")).
				Bold(true)

	alertModerateStyle = lipgloss.NewStyle().
				Foreground(colorWarning).
				Bold(true)

	alertMinorStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 0)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				MarginTop(1)

	searchBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Width(64)

	sectionBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)
)

// ratingStyle colors a safety rating from green to red
func ratingStyle(r models.SafetyRating) lipgloss.Style {
	switch r {
	case models.RatingExcellent, models.RatingGood:
		return successStyle.Bold(true)
	case models.RatingFair:
		return alertModerateStyle
	case models.RatingPoor:
		return alertSevereStyle
	default:
		return alertExtremeStyle
	}
}

// scoreStyle colors a 0-100 bite score
func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 70:
		return successStyle.Bold(true)
	case score >= 45:
		return alertModerateStyle
	default:
		return mutedStyle
	}
}
