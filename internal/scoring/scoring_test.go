package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

func TestPhaseNameFromAngle(t *testing.T) {
	tests := []struct {
		angle float64
		want  string
	}{
		{0, "New Moon"},
		{7.5, "New Moon"},
		{7.6, "Waxing Crescent"},
		{45, "Waxing Crescent"},
		{90, "First Quarter"},
		{135, "Waxing Gibbous"},
		{180, "Full Moon"},
		{225, "Waning Gibbous"},
		{270, "Last Quarter"},
		{315, "Waning Crescent"},
		{352.6, "New Moon"},
		{360, "New Moon"},
		{450, "First Quarter"},
		{-90, "Last Quarter"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PhaseNameFromAngle(tt.angle), "angle %v", tt.angle)
	}
}

func TestPhaseNameFromAngle_AlwaysCanonical(t *testing.T) {
	names := map[string]bool{
		"New Moon": true, "Waxing Crescent": true, "First Quarter": true, "Waxing Gibbous": true,
		"Full Moon": true, "Waning Gibbous": true, "Last Quarter": true, "Waning Crescent": true,
	}
	for a := 0.0; a < 360; a += 0.25 {
		assert.True(t, names[PhaseNameFromAngle(a)], "angle %v", a)
	}
}

func TestScoreMoon(t *testing.T) {
	newMoon := ScoreMoon(models.MoonData{PhaseAngleDeg: 0, Illumination: 0})
	fullMoon := ScoreMoon(models.MoonData{PhaseAngleDeg: 180, Illumination: 1})
	quarter := ScoreMoon(models.MoonData{PhaseAngleDeg: 90, Illumination: 0.5})

	assert.InDelta(t, 0.6, newMoon, 1e-9)
	assert.InDelta(t, 1.0, fullMoon, 1e-9)
	assert.InDelta(t, 0.8, quarter, 1e-9)
	assert.Greater(t, fullMoon, newMoon)
	assert.Greater(t, fullMoon, quarter)

	crescent := ScoreMoon(models.MoonData{PhaseAngleDeg: 45, Illumination: 0.15})
	assert.InDelta(t, 0.06, crescent, 1e-9)
}

func TestScoreObservation(t *testing.T) {
	t.Run("optimal conditions", func(t *testing.T) {
		s := ScoreObservation(models.WeatherObservation{TempC: 18, WindKph: 10, PrecipMm: 0, CloudPct: 30})
		assert.Greater(t, s, 0.8)
		assert.InDelta(t, 0.96, s, 1e-9)
	})

	t.Run("adverse conditions", func(t *testing.T) {
		s := ScoreObservation(models.WeatherObservation{TempC: -5, WindKph: 35, PrecipMm: 10, CloudPct: 95})
		assert.Less(t, s, 0.4)
	})
}

func TestSubScoreRamps(t *testing.T) {
	assert.InDelta(t, 0.2, windScore(0.5), 1e-9)
	assert.InDelta(t, 0.6, windScore(2), 1e-9)
	assert.InDelta(t, 1.0, windScore(18), 1e-9)
	assert.InDelta(t, 0.6, windScore(27), 1e-9)
	assert.InDelta(t, 0.2, windScore(40), 1e-9)

	assert.InDelta(t, 0.3, cloudScore(2), 1e-9)
	assert.InDelta(t, 0.65, cloudScore(7.5), 1e-9)
	assert.InDelta(t, 0.65, cloudScore(60), 1e-9)
	assert.InDelta(t, 0.3, cloudScore(90), 1e-9)

	assert.Equal(t, 0.8, precipScore(0.5))
	assert.Equal(t, 0.5, precipScore(3))
	assert.Equal(t, 0.2, precipScore(10))
	assert.Equal(t, 0.1, precipScore(10.5))

	assert.InDelta(t, 0.6, tempScore(4), 1e-9)
	assert.InDelta(t, 0.6, tempScore(28), 1e-9)
	assert.InDelta(t, 0.2, tempScore(-10), 1e-9)
}

func primary(obs models.WeatherObservation, rating models.SafetyRating, trend models.BarometricTrend) *models.PrimaryWeather {
	return &models.PrimaryWeather{EnhancedWeather: models.EnhancedWeather{
		WeatherObservation: obs,
		Safety:             models.SafetyAssessment{Rating: rating},
		BarometricTrend:    trend,
		Source:             models.SourcePrimary,
	}}
}

func TestScoreWeather_PrimaryEnhancement(t *testing.T) {
	obs := models.WeatherObservation{TempC: 5, WindKph: 25, PrecipMm: 2, CloudPct: 60}
	base := ScoreObservation(obs)

	t.Run("falling trend bonus", func(t *testing.T) {
		assert.InDelta(t, base+0.1, ScoreWeather(primary(obs, models.RatingExcellent, models.TrendFalling)), 1e-9)
	})

	t.Run("rising trend bonus", func(t *testing.T) {
		assert.InDelta(t, base+0.05, ScoreWeather(primary(obs, models.RatingGood, models.TrendRising)), 1e-9)
	})

	t.Run("ideal waves bonus", func(t *testing.T) {
		w := primary(obs, models.RatingGood, models.TrendSteady)
		w.Marine = &models.MarineObservation{WaveHeightM: models.Float64(1.2)}
		assert.InDelta(t, base+0.05, ScoreWeather(w), 1e-9)
	})

	t.Run("safety penalties", func(t *testing.T) {
		assert.InDelta(t, base-0.1, ScoreWeather(primary(obs, models.RatingFair, models.TrendSteady)), 1e-9)
		assert.InDelta(t, base-0.2, ScoreWeather(primary(obs, models.RatingPoor, models.TrendSteady)), 1e-9)
	})

	t.Run("dangerous vetoes everything", func(t *testing.T) {
		ideal := models.WeatherObservation{TempC: 18, WindKph: 10, PrecipMm: 0, CloudPct: 30}
		assert.Equal(t, 0.0, ScoreWeather(primary(ideal, models.RatingDangerous, models.TrendFalling)))
	})

	t.Run("bonus is clamped", func(t *testing.T) {
		ideal := models.WeatherObservation{TempC: 18, WindKph: 10, PrecipMm: 0, CloudPct: 30}
		w := primary(ideal, models.RatingExcellent, models.TrendFalling)
		w.Marine = &models.MarineObservation{WaveHeightM: models.Float64(1.0)}
		assert.Equal(t, 1.0, ScoreWeather(w))
	})
}

func TestScoreWeather_FallbackIgnoresEnhancement(t *testing.T) {
	obs := models.WeatherObservation{TempC: 18, WindKph: 10, PrecipMm: 0, CloudPct: 30}
	w := &models.FallbackWeather{EnhancedWeather: models.EnhancedWeather{
		WeatherObservation: obs,
		Safety:             models.SafetyAssessment{Rating: models.RatingDangerous},
		BarometricTrend:    models.TrendFalling,
		Source:             models.SourceFallback,
	}}

	assert.InDelta(t, ScoreObservation(obs), ScoreWeather(w), 1e-9)
}

func TestScoreAlmanac(t *testing.T) {
	assert.Nil(t, ScoreAlmanac(models.AlmanacData{}))
	assert.Equal(t, 1.0, *ScoreAlmanac(models.AlmanacData{Rating01: models.Float64(1.4)}))
	assert.Equal(t, 0.0, *ScoreAlmanac(models.AlmanacData{Rating01: models.Float64(-0.2)}))
	assert.Equal(t, 0.7, *ScoreAlmanac(models.AlmanacData{Rating01: models.Float64(0.7)}))
}

func TestCombineScores(t *testing.T) {
	t.Run("without almanac", func(t *testing.T) {
		total, c := CombineScores(0.8, 0.6, nil)
		assert.InDelta(t, 68.8, total, 1e-9)
		assert.InDelta(t, 35.2, c.Moon, 1e-9)
		assert.InDelta(t, 33.6, c.Weather, 1e-9)
		assert.Nil(t, c.Almanac)
	})

	t.Run("with almanac", func(t *testing.T) {
		total, c := CombineScores(0.8, 0.6, models.Float64(0.9))
		assert.InDelta(t, 73.0, total, 1e-9)
		assert.InDelta(t, 28.0, c.Moon, 1e-9)
		assert.InDelta(t, 27.0, c.Weather, 1e-9)
		assert.InDelta(t, 18.0, *c.Almanac, 1e-9)
	})

	t.Run("components track the total within rounding", func(t *testing.T) {
		for m := 0.0; m <= 1.0; m += 0.07 {
			for w := 0.0; w <= 1.0; w += 0.09 {
				total, c := CombineScores(m, w, nil)
				assert.GreaterOrEqual(t, total, 0.0)
				assert.LessOrEqual(t, total, 100.0)
				assert.InDelta(t, total, c.Sum(), 0.2)
			}
		}
	})
}

func TestScoreDay(t *testing.T) {
	moon := models.MoonData{PhaseAngleDeg: 180, Illumination: 1}
	w := primary(models.WeatherObservation{TempC: 18, WindKph: 10, CloudPct: 30}, models.RatingDangerous, models.TrendSteady)

	total, c := ScoreDay(moon, w, models.AlmanacData{})
	assert.InDelta(t, 44.0, total, 1e-9)
	assert.InDelta(t, 44.0, c.Moon, 1e-9)
	assert.Equal(t, 0.0, c.Weather)
}
