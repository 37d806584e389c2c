package safety

import "github.com/ngmaloney/bite-forecast/internal/models"

// DoNotFish is the only tip given on a DANGEROUS day
const DoNotFish = "DO NOT FISH - Dangerous weather conditions"

// FishingTips turns a day's fused weather into short angler advice
func FishingTips(w *models.EnhancedWeather) []string {
	if w.Safety.Rating == models.RatingDangerous {
		return []string{DoNotFish}
	}

	var tips []string
	switch w.BarometricTrend {
	case models.TrendFalling:
		tips = append(tips, "Excellent - Fish often bite before storms")
	case models.TrendRising:
		tips = append(tips, "Good - Stable conditions after weather systems")
	}

	if w.Marine != nil && w.Marine.WaveHeightM != nil {
		switch waves := *w.Marine.WaveHeightM; {
		case waves <= 0.5:
			tips = append(tips, "Calm seas - Perfect for small boats")
		case waves <= 1.5:
			tips = append(tips, "Light chop - Good for experienced anglers")
		case waves <= 2.5:
			tips = append(tips, "Moderate seas - Use caution")
		default:
			tips = append(tips, "Rough seas - Consider shore fishing")
		}
	}

	switch {
	case w.WindKph <= 15:
		tips = append(tips, "Light winds - Ideal conditions")
	case w.WindKph <= 25:
		tips = append(tips, "Moderate winds - Use heavier tackle")
	default:
		tips = append(tips, "Strong winds - Seek sheltered areas")
	}

	if w.TempC >= 15 && w.TempC <= 22 {
		tips = append(tips, "Perfect temperature for active fish")
	}
	return tips
}
