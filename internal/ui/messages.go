package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/bite-forecast/internal/almanac"
	"github.com/ngmaloney/bite-forecast/internal/geocoding"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

const (
	geocodeTimeout  = 15 * time.Second
	forecastTimeout = 2 * time.Minute
)

// geocodeMsg is sent when geocoding completes
type geocodeMsg struct {
	location *geocoding.Location
	err      error
}

// forecastMsg is sent when the forecast for a location is ready
type forecastMsg struct {
	days []models.ForecastScore
	err  error
}

// errMsg is a message type for errors
type errMsg struct {
	err error
}

// provisioningStartedMsg carries the channels of a running provisioning job
type provisioningStartedMsg struct {
	progressChan chan string
	resultChan   chan error
}

type provisionStatusMsg string

type provisionResultMsg struct {
	err error
}

// geocodeLocation performs geocoding in the background
func geocodeLocation(g Geocoder, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), geocodeTimeout)
		defer cancel()

		location, err := g.Geocode(ctx, query)
		return geocodeMsg{location: location, err: err}
	}
}

// fetchForecast generates the forecast starting today
func fetchForecast(f Forecaster, src almanac.Source, loc *geocoding.Location, days int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), forecastTimeout)
		defer cancel()

		scores, err := f.GenerateForecast(ctx, loc.Latitude, loc.Longitude, f.Today(), days, src)
		return forecastMsg{days: scores, err: err}
	}
}

// startProvisioning runs provision in the background and reports progress
func startProvisioning(provision Provisioner) tea.Cmd {
	return func() tea.Msg {
		progress := make(chan string, 16)
		result := make(chan error, 1)
		go func() {
			defer close(progress)
			result <- provision(context.Background(), progress)
		}()
		return provisioningStartedMsg{progressChan: progress, resultChan: result}
	}
}

func waitForProvisionStatus(progress <-chan string) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-progress
		if !ok {
			return nil
		}
		return provisionStatusMsg(msg)
	}
}

func waitForProvisionResult(result <-chan error) tea.Cmd {
	return func() tea.Msg {
		return provisionResultMsg{err: <-result}
	}
}
