package main

import (
	"bytes"
	"context"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

func TestWriteTable(t *testing.T) {
	scores := []models.ForecastScore{{
		Date:      "2025-10-20",
		BiteScore: 72.5,
		Moon:      models.MoonData{PhaseName: "Waning Crescent"},
		Weather: models.EnhancedWeather{
			WeatherObservation: models.WeatherObservation{TempC: 18, WindKph: 12},
			BarometricTrend:    models.TrendFalling,
			Source:             models.SourcePrimary,
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, "Chatham, MA", scores))

	out := buf.String()
	assert.Contains(t, out, "Chatham, MA")
	assert.Contains(t, out, "2025-10-20")
	assert.Contains(t, out, "72.5")
	assert.Contains(t, out, "Waning Crescent")
	assert.Contains(t, out, "FALLING")
	assert.Contains(t, out, "PRIMARY")
}

func TestFlagSet(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Float64("lat", 0, "")
	fs.Float64("lon", 0, "")
	require.NoError(t, fs.Parse([]string{"--lat", "0"}))

	assert.True(t, flagSet(fs, "lat"))
	assert.False(t, flagSet(fs, "lon"))
}

func TestRunStations_RequiresSubcommand(t *testing.T) {
	a := &app{}
	err := a.runStations(context.Background(), nil, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunZipcodes_Usage(t *testing.T) {
	a := &app{}
	assert.Error(t, a.runZipcodes(context.Background(), []string{"nope"}))
}
