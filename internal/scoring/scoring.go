// Package scoring maps moon, weather and almanac inputs to bounded sub-scores
// and combines them into the 0-100 bite score. Every function here is pure.
package scoring

import (
	"math"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// Combination weights
const (
	moonWeight    = 0.44
	weatherWeight = 0.56

	moonWeightWithAlmanac    = 0.35
	weatherWeightWithAlmanac = 0.45
	almanacWeight            = 0.20
)

// Sub-score weights within the weather score
const (
	windWeight   = 0.35
	cloudWeight  = 0.25
	precipWeight = 0.20
	tempWeight   = 0.20
)

type phaseEdge struct {
	upper float64
	name  string
}

// ±7.5° windows around the four principal phases
var phaseEdges = []phaseEdge{
	{7.5, "New Moon"},
	{82.5, "Waxing Crescent"},
	{97.5, "First Quarter"},
	{172.5, "Waxing Gibbous"},
	{187.5, "Full Moon"},
	{262.5, "Waning Gibbous"},
	{277.5, "Last Quarter"},
	{352.5, "Waning Crescent"},
	{360, "New Moon"},
}

// NormalizeAngle folds any angle into [0,360)
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// PhaseNameFromAngle returns one of the eight canonical moon phase names
func PhaseNameFromAngle(deg float64) string {
	a := NormalizeAngle(deg)
	for _, edge := range phaseEdges {
		if a <= edge.upper {
			return edge.name
		}
	}
	return "New Moon"
}

// ScoreMoon peaks at new and full moon and blends in illumination
func ScoreMoon(moon models.MoonData) float64 {
	a := moon.PhaseAngleDeg * math.Pi / 180
	s := math.Abs(math.Cos(2 * a))
	return clamp01(0.6*s + 0.4*moon.Illumination)
}

// ScoreObservation scores plain weather without any provider enhancement
func ScoreObservation(w models.WeatherObservation) float64 {
	return clamp01(baseWeatherScore(w))
}

// ScoreWeather scores fused weather. Trend, wave and safety adjustments
// apply to primary-provider weather only; a DANGEROUS rating vetoes to 0.
func ScoreWeather(fw models.FusedWeather) float64 {
	switch w := fw.(type) {
	case *models.PrimaryWeather:
		if w.Safety.Rating == models.RatingDangerous {
			return 0
		}
		return clamp01(baseWeatherScore(w.WeatherObservation) + enhancement(&w.EnhancedWeather))
	case *models.FallbackWeather:
		return clamp01(baseWeatherScore(w.WeatherObservation))
	default:
		return 0
	}
}

func enhancement(w *models.EnhancedWeather) float64 {
	var bonus float64
	switch w.BarometricTrend {
	case models.TrendFalling:
		bonus += 0.1
	case models.TrendRising:
		bonus += 0.05
	}

	if w.Marine != nil && w.Marine.WaveHeightM != nil {
		h := *w.Marine.WaveHeightM
		if h >= 0.5 && h <= 2.0 {
			bonus += 0.05
		}
	}

	switch w.Safety.Rating {
	case models.RatingPoor:
		bonus -= 0.2
	case models.RatingFair:
		bonus -= 0.1
	}
	return bonus
}

func baseWeatherScore(w models.WeatherObservation) float64 {
	return windWeight*windScore(w.WindKph) +
		cloudWeight*cloudScore(w.CloudPct) +
		precipWeight*precipScore(w.PrecipMm) +
		tempWeight*tempScore(w.TempC)
}

// 3-18 km/h plateau, floor 0.2 outside [1,36]
func windScore(kph float64) float64 {
	switch {
	case kph < 1 || kph > 36:
		return 0.2
	case kph >= 3 && kph <= 18:
		return 1.0
	case kph < 3:
		return 0.2 + ((kph-1)/2)*0.8
	default:
		return 0.2 + ((36-kph)/18)*0.8
	}
}

// 10-40% plateau, floor 0.3 outside [5,80]
func cloudScore(pct float64) float64 {
	switch {
	case pct < 5 || pct > 80:
		return 0.3
	case pct >= 10 && pct <= 40:
		return 1.0
	case pct < 10:
		return 0.3 + ((pct-5)/5)*0.7
	default:
		return 0.3 + ((80-pct)/40)*0.7
	}
}

func precipScore(mm float64) float64 {
	switch {
	case mm > 10:
		return 0.1
	case mm < 1:
		return 0.8
	case mm < 5:
		return 0.5
	default:
		return 0.2
	}
}

// 10-24 °C plateau, floor 0.2 outside [-2,32]
func tempScore(c float64) float64 {
	switch {
	case c < -2 || c > 32:
		return 0.2
	case c >= 10 && c <= 24:
		return 1.0
	case c < 10:
		return math.Max(0.2, 0.2+((c+2)/12)*0.8)
	default:
		return math.Max(0.2, 0.2+((32-c)/8)*0.8)
	}
}

// ScoreAlmanac clamps the almanac rating, or returns nil when there is none
func ScoreAlmanac(a models.AlmanacData) *float64 {
	if a.Rating01 == nil {
		return nil
	}
	return models.Float64(clamp01(*a.Rating01))
}

// CombineScores weights the sub-scores into a 0-100 total. Components are
// rounded independently of the total, so their sum may differ from it by
// about 0.1.
func CombineScores(moon, weather float64, almanac *float64) (float64, models.ScoreComponents) {
	if almanac == nil {
		total := moonWeight*moon + weatherWeight*weather
		return round1(100 * clamp01(total)), models.ScoreComponents{
			Moon:    round1(100 * moonWeight * moon),
			Weather: round1(100 * weatherWeight * weather),
		}
	}

	total := moonWeightWithAlmanac*moon + weatherWeightWithAlmanac*weather + almanacWeight*(*almanac)
	return round1(100 * clamp01(total)), models.ScoreComponents{
		Moon:    round1(100 * moonWeightWithAlmanac * moon),
		Weather: round1(100 * weatherWeightWithAlmanac * weather),
		Almanac: models.Float64(round1(100 * almanacWeight * (*almanac))),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ScoreDay runs every sub-score and combines them
func ScoreDay(moon models.MoonData, weather models.FusedWeather, almanac models.AlmanacData) (float64, models.ScoreComponents) {
	return CombineScores(ScoreMoon(moon), ScoreWeather(weather), ScoreAlmanac(almanac))
}
