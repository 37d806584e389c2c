// Package safety derives a fishing safety rating from alerts, weather,
// storm outlooks and marine data. Every rule can only make the rating worse.
package safety

import (
	"fmt"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

const (
	highWindKph      = 40.0
	alertWindKph     = 30.0
	heavyPrecipMm    = 10.0
	riskCountForFair = 2
)

// Messages shared with the fusion engine's degraded paths
const (
	UnavailableRisk           = "Unable to fetch current weather conditions"
	UnavailableRecommendation = "Weather data unavailable - use caution"
)

// Events the coarse pass treats as relevant to anglers on the water
var fishingKeywords = []string{"thunderstorm", "wind", "marine", "small craft", "gale", "tornado"}

// Convective hazards that escalate otherwise minor alerts
var convectiveEvents = []string{"severe thunderstorm", "tornado", "hazardous weather outlook"}

// Events that warrant at least FAIR regardless of severity
var impairedVisibilityEvents = []string{"special weather statement", "winter", "snow", "fog", "flood"}

// Assess rates a day from its active alerts and weather. A coarse pass over
// thresholds and keywords runs first, then every alert is classified on its
// own; the worse outcome wins.
func Assess(alerts []models.Alert, w models.WeatherObservation) models.SafetyAssessment {
	s := models.SafetyAssessment{
		Rating:          models.RatingExcellent,
		ActiveAlerts:    append([]models.Alert{}, alerts...),
		RiskFactors:     []string{},
		Recommendations: []string{},
	}

	coarsePass(&s, alerts, w)
	for i := range alerts {
		classifyAlert(&s, &alerts[i])
	}
	return s
}

func coarsePass(s *models.SafetyAssessment, alerts []models.Alert, w models.WeatherObservation) {
	var severe, fishingRelated bool
	for i := range alerts {
		if alerts[i].IsSevere() {
			severe = true
		}
		if alerts[i].EventContains(fishingKeywords...) {
			fishingRelated = true
		}
	}

	if w.WindKph > highWindKph {
		s.AddRiskFactor("High winds (>40 km/h)")
		s.AddRecommendation("Consider sheltered fishing spots")
	}
	if w.PrecipMm > heavyPrecipMm {
		s.AddRiskFactor("Heavy precipitation expected")
		s.AddRecommendation("Bring weather protection")
	}

	switch {
	case severe:
		s.Downgrade(models.RatingDangerous)
		s.AddRecommendation("DO NOT FISH - Severe weather expected")
	case fishingRelated:
		if w.WindKph > alertWindKph {
			s.Downgrade(models.RatingPoor)
		} else {
			s.Downgrade(models.RatingFair)
		}
		s.AddRecommendation("Exercise extreme caution")
	case len(s.RiskFactors) > riskCountForFair:
		s.Downgrade(models.RatingFair)
	case len(s.RiskFactors) > 0:
		s.Downgrade(models.RatingGood)
	}
}

// AlertRating classifies a single alert
func AlertRating(a *models.Alert) models.SafetyRating {
	convective := a.EventContains(convectiveEvents...)
	immediate := a.Urgency == models.UrgencyImmediate

	var r models.SafetyRating
	switch a.Severity {
	case models.SeverityExtreme, models.SeveritySevere:
		return models.RatingDangerous
	case models.SeverityModerate:
		r = models.RatingFair
		if convective {
			r = models.RatingPoor
		}
	default:
		r = models.RatingGood
		if convective {
			r = models.RatingFair
			if immediate {
				r = models.RatingPoor
			}
		}
	}

	if a.EventContains(impairedVisibilityEvents...) {
		r = r.Worse(models.RatingFair)
	}

	// Immediate or observed hazards are never rated better than FAIR.
	if (immediate || a.Certainty == models.CertaintyObserved) && r < models.RatingFair {
		r++
	}
	return r
}

func classifyAlert(s *models.SafetyAssessment, a *models.Alert) {
	s.Downgrade(AlertRating(a))
	s.AddRiskFactor(fmt.Sprintf("%s %s: %s", a.Severity, a.Event, a.Headline))
	if a.Instruction != "" {
		s.AddRecommendation(a.Instruction)
	}
}

// ApplyOutlook folds a storm outlook into an assessment
func ApplyOutlook(s *models.SafetyAssessment, o *models.OutlookRisk) {
	if o == nil {
		return
	}
	switch o.Risk {
	case models.RiskMarginal, models.RiskSlight:
		s.Downgrade(models.RatingFair)
	case models.RiskEnhanced:
		s.Downgrade(models.RatingPoor)
	case models.RiskModerate, models.RiskHigh:
		s.Downgrade(models.RatingDangerous)
	}
	s.SPCOutlook = o
	s.AddRiskFactor(fmt.Sprintf("SPC Day %d outlook: %s", o.Day, o.Risk))
}

// Default is the placeholder assessment attached to fallback weather
func Default() models.SafetyAssessment {
	return models.SafetyAssessment{
		Rating:          models.RatingGood,
		ActiveAlerts:    []models.Alert{},
		RiskFactors:     []string{},
		Recommendations: []string{},
	}
}

// Unavailable is the assessment attached to the synthetic default weather
func Unavailable() models.SafetyAssessment {
	return models.SafetyAssessment{
		Rating:          models.RatingFair,
		ActiveAlerts:    []models.Alert{},
		RiskFactors:     []string{UnavailableRisk},
		Recommendations: []string{UnavailableRecommendation},
	}
}
