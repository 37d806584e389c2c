package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

func TestFishingTips(t *testing.T) {
	tests := []struct {
		name string
		w    models.EnhancedWeather
		want []string
	}{
		{
			name: "dangerous overrides everything",
			w: models.EnhancedWeather{
				WeatherObservation: calmWeather,
				Safety:             models.SafetyAssessment{Rating: models.RatingDangerous},
				BarometricTrend:    models.TrendFalling,
			},
			want: []string{DoNotFish},
		},
		{
			name: "falling pressure calm seas",
			w: models.EnhancedWeather{
				WeatherObservation: calmWeather,
				BarometricTrend:    models.TrendFalling,
				Marine:             &models.MarineObservation{WaveHeightM: models.Float64(0.4)},
			},
			want: []string{
				"Excellent - Fish often bite before storms",
				"Calm seas - Perfect for small boats",
				"Light winds - Ideal conditions",
				"Perfect temperature for active fish",
			},
		},
		{
			name: "rising pressure moderate wind cold",
			w: models.EnhancedWeather{
				WeatherObservation: models.WeatherObservation{TempC: 8, WindKph: 22},
				BarometricTrend:    models.TrendRising,
				Marine:             &models.MarineObservation{WaveHeightM: models.Float64(2.0)},
			},
			want: []string{
				"Good - Stable conditions after weather systems",
				"Moderate seas - Use caution",
				"Moderate winds - Use heavier tackle",
			},
		},
		{
			name: "steady strong wind rough seas",
			w: models.EnhancedWeather{
				WeatherObservation: models.WeatherObservation{TempC: 25, WindKph: 32},
				BarometricTrend:    models.TrendSteady,
				Marine:             &models.MarineObservation{WaveHeightM: models.Float64(3.1)},
			},
			want: []string{
				"Rough seas - Consider shore fishing",
				"Strong winds - Seek sheltered areas",
			},
		},
		{
			name: "marine block without waves",
			w: models.EnhancedWeather{
				WeatherObservation: models.WeatherObservation{TempC: 12, WindKph: 5},
				Marine:             &models.MarineObservation{WaterTempC: models.Float64(14)},
			},
			want: []string{"Light winds - Ideal conditions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FishingTips(&tt.w))
		})
	}
}
