package safety

import (
	"fmt"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// Wave heights in metres and sustained winds in km/h
const (
	dangerousWaveM = 3.0
	roughWaveM     = 2.5
	choppyWaveM    = 1.5
	calmWaveM      = 0.5

	galeWindKph     = 55.0
	strongWindKph   = 40.0
	moderateWindKph = 28.0
)

// ApplyMarine adds station wave, wind and tide rules to an assessment.
// Tide notes cover the 24 hours starting at dayStart.
func ApplyMarine(s *models.SafetyAssessment, m *models.MarineObservation, dayStart time.Time) {
	if m == nil {
		return
	}

	if m.WaveHeightM != nil {
		switch h := *m.WaveHeightM; {
		case h >= dangerousWaveM:
			s.Downgrade(models.RatingDangerous)
			s.AddRiskFactor("Wave height exceeds 3m near the nearest NOAA station")
			s.AddRecommendation("Conditions unsafe for small craft due to high waves")
		case h >= roughWaveM:
			s.Downgrade(models.RatingPoor)
			s.AddRiskFactor("Wave height exceeds 2.5m near the nearest NOAA station")
			s.AddRecommendation("Use caution offshore, seas are elevated")
		case h >= choppyWaveM:
			s.Downgrade(models.RatingFair)
			s.AddRiskFactor("Moderate chop reported at the nearest NOAA station")
			s.AddRecommendation("Plan for choppy water and secure loose gear")
		case h <= calmWaveM:
			s.AddRecommendation("Calm seas reported near the nearest NOAA station")
		}
	}

	if m.WindSpeedKph != nil {
		switch w := *m.WindSpeedKph; {
		case w >= galeWindKph:
			s.Downgrade(models.RatingDangerous)
			s.AddRiskFactor("Sustained marine wind exceeding 55 km/h")
		case w >= strongWindKph:
			s.Downgrade(models.RatingPoor)
			s.AddRiskFactor("Strong marine wind exceeding 40 km/h")
		case w >= moderateWindKph:
			s.Downgrade(models.RatingFair)
			s.AddRiskFactor("Moderate marine breeze exceeding 28 km/h")
		default:
			s.AddRecommendation("Marine wind speeds are manageable for most vessels")
		}
	}

	var high, low *models.TideEvent
	for _, e := range models.EventsInWindow(m.TideEvents, dayStart) {
		e := e
		switch {
		case e.Type == models.TideHigh && high == nil:
			high = &e
		case e.Type == models.TideLow && low == nil:
			low = &e
		}
	}
	if high != nil {
		s.AddRecommendation(tideNote("high", high))
	}
	if low != nil {
		s.AddRecommendation(tideNote("low", low))
	}
}

func tideNote(kind string, e *models.TideEvent) string {
	return fmt.Sprintf("Next %s tide: %s (%.2fm)", kind, e.Time.UTC().Format("15:04 MST"), e.HeightMeters)
}
