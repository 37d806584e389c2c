package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// getAlertStyle returns the appropriate style for an alert severity
func getAlertStyle(severity models.AlertSeverity) lipgloss.Style {
	switch severity {
	case models.SeverityExtreme:
		return alertExtremeStyle
	case models.SeveritySevere:
		return alertSevereStyle
	case models.SeverityModerate:
		return alertModerateStyle
	case models.SeverityMinor:
		return alertMinorStyle
	default:
		return valueStyle
	}
}

// renderSafety lists the rating, alerts, risk factors and recommendations
func renderSafety(s models.SafetyAssessment) string {
	lines := []string{
		labelStyle.Render("Rating: ") + ratingStyle(s.Rating).Render(s.Rating.String()),
	}
	if s.SPCOutlook != nil {
		lines = append(lines, fmt.Sprintf("Storm outlook: Day %d %s", s.SPCOutlook.Day, s.SPCOutlook.Risk))
	}

	if len(s.ActiveAlerts) == 0 {
		lines = append(lines, successStyle.Render("No active alerts"))
	}
	for _, alert := range s.ActiveAlerts {
		lines = append(lines, getAlertStyle(alert.Severity).Render("! "+alert.Event))
		if alert.Headline != "" {
			lines = append(lines, "  "+alert.Headline)
		}
		if !alert.Expires.IsZero() {
			lines = append(lines, mutedStyle.Render("  Expires: "+alert.Expires.Local().Format("Jan 2, 3:04 PM")))
		}
	}

	if len(s.RiskFactors) > 0 {
		lines = append(lines, "", labelStyle.Render("Risk factors:"))
		for _, r := range s.RiskFactors {
			lines = append(lines, "  - "+r)
		}
	}
	if len(s.Recommendations) > 0 {
		lines = append(lines, "", labelStyle.Render("Recommendations:"))
		for _, r := range s.Recommendations {
			lines = append(lines, "  - "+r)
		}
	}
	return strings.Join(lines, "\n")
}
