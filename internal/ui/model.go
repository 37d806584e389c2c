// Package ui is the interactive terminal front end: search for a place,
// browse the forecast days, open a day for detail.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ngmaloney/bite-forecast/internal/almanac"
	"github.com/ngmaloney/bite-forecast/internal/geocoding"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

// AppState represents the current state of the application
type AppState int

const (
	StateSearch       AppState = iota // Search for location
	StateLoading                      // Geocoding and forecasting
	StateDays                         // List of forecast days
	StateDetail                       // One day in detail
	StateProvisioning                 // Initial data provisioning
	StateError                        // Error state
)

// Geocoder resolves a search query to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocoding.Location, error)
}

// Forecaster generates forecast days
type Forecaster interface {
	GenerateForecast(ctx context.Context, lat, lon float64, startDate string, days int, src almanac.Source) ([]models.ForecastScore, error)
	Today() string
}

// Provisioner builds local lookup tables, reporting progress as it goes
type Provisioner func(ctx context.Context, progress chan<- string) error

// Options wires the model to its collaborators
type Options struct {
	Geocoder   Geocoder
	Forecaster Forecaster
	Almanac    almanac.Source
	Days       int
	// Provision runs before the first search when set
	Provision Provisioner
	// Query is searched immediately when set
	Query string
}

// Model represents the application's state
type Model struct {
	state  AppState
	width  int
	height int
	err    error

	opts Options

	searchInput textinput.Model
	searchQuery string
	location    *geocoding.Location

	days     []models.ForecastScore
	dayList  list.Model
	selected int

	spinner           spinner.Model
	provisionStatus   string
	provisionChannels *provisioningStartedMsg
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	if opts.Days < 1 {
		opts.Days = 7
	}

	ti := textinput.New()
	ti.Placeholder = "Zipcode, city, state or lat,lon (e.g. 02633 or Chatham, MA)..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 60
	ti.SetValue(opts.Query)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := Model{
		state:       StateSearch,
		opts:        opts,
		searchInput: ti,
		spinner:     s,
	}
	if opts.Query != "" && opts.Provision == nil {
		m.state = StateLoading
		m.searchQuery = opts.Query
	}
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if m.opts.Provision != nil {
		return tea.Batch(m.spinner.Tick, startProvisioning(m.opts.Provision))
	}
	if m.opts.Query != "" {
		return tea.Batch(m.spinner.Tick, geocodeLocation(m.opts.Geocoder, m.opts.Query))
	}
	return textinput.Blink
}

func (m *Model) search(query string) tea.Cmd {
	m.searchQuery = query
	m.err = nil
	m.state = StateLoading
	return geocodeLocation(m.opts.Geocoder, query)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		if m.state == StateDays {
			m.dayList.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case errMsg:
		m.err = msg.err
		m.state = StateError
		return m, nil

	case provisioningStartedMsg:
		m.state = StateProvisioning
		m.provisionStatus = "Starting data provisioning..."
		m.provisionChannels = &msg
		return m, tea.Batch(
			waitForProvisionStatus(msg.progressChan),
			waitForProvisionResult(msg.resultChan),
		)

	case provisionStatusMsg:
		m.provisionStatus = string(msg)
		if m.provisionChannels != nil {
			return m, waitForProvisionStatus(m.provisionChannels.progressChan)
		}
		return m, nil

	case provisionResultMsg:
		m.provisionChannels = nil
		if msg.err != nil {
			m.err = fmt.Errorf("provisioning failed: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		if m.opts.Query != "" {
			cmd = m.search(m.opts.Query)
			return m, cmd
		}
		m.state = StateSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case geocodeMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("geocoding failed: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		m.location = msg.location
		return m, fetchForecast(m.opts.Forecaster, m.opts.Almanac, msg.location, m.opts.Days)

	case forecastMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("forecast failed: %w", msg.err)
			m.state = StateError
			return m, nil
		}
		m.days = msg.days
		m.dayList = createDayList(msg.days, max(m.width-4, 40), max(m.height-6, 10))
		m.state = StateDays
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if keyMsg.String() == "q" && m.state != StateSearch {
			return m, tea.Quit
		}

		switch m.state {
		case StateSearch:
			return m.handleSearchInput(keyMsg)

		case StateDays:
			return m.handleDayList(keyMsg)

		case StateDetail:
			switch {
			case keyMsg.String() == "s":
				return m.resetSearch()
			case keyMsg.Type == tea.KeyEsc || keyMsg.Type == tea.KeyBackspace:
				m.state = StateDays
			case keyMsg.Type == tea.KeyLeft && m.selected > 0:
				m.selected--
			case keyMsg.Type == tea.KeyRight && m.selected < len(m.days)-1:
				m.selected++
			}
			return m, nil

		case StateError:
			// Any key returns to search (except quit keys)
			return m.resetSearch()
		}
	}

	switch m.state {
	case StateProvisioning, StateLoading:
		m.spinner, cmd = m.spinner.Update(msg)
	case StateSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case StateDays:
		m.dayList, cmd = m.dayList.Update(msg)
	}
	return m, cmd
}

// handleSearchInput handles keyboard input in search state
func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg.Type == tea.KeyEnter {
		query := m.searchInput.Value()
		if query == "" {
			return m, nil
		}
		cmd = m.search(query)
		return m, tea.Batch(m.spinner.Tick, cmd)
	}

	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleDayList handles keyboard input while browsing days
func (m Model) handleDayList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case msg.Type == tea.KeyEnter:
		if len(m.days) > 0 {
			m.selected = m.dayList.Index()
			m.state = StateDetail
		}
		return m, nil
	case msg.String() == "s" || msg.Type == tea.KeyEsc:
		return m.resetSearch()
	}

	m.dayList, cmd = m.dayList.Update(msg)
	return m, cmd
}

func (m Model) resetSearch() (tea.Model, tea.Cmd) {
	m.state = StateSearch
	m.err = nil
	m.days = nil
	m.location = nil
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	return m, textinput.Blink
}

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.state {
	case StateProvisioning:
		return m.viewProvisioning()
	case StateSearch:
		return m.viewSearch()
	case StateLoading:
		return m.viewLoading()
	case StateDays:
		return m.viewDays()
	case StateDetail:
		return m.viewDetail()
	case StateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewProvisioning() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Bite Forecast Setup"),
		"",
		fmt.Sprintf("%s %s", m.spinner.View(), mutedStyle.Render(m.provisionStatus)),
		helpStyle.Render("One-time setup: building the local location tables..."),
	)
}

func (m Model) viewError() string {
	errorText := "An unknown error occurred"
	if m.err != nil {
		errorText = m.err.Error()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render("Error"),
		"",
		errorText,
		helpStyle.Render("Press any key to return to search • Ctrl+C: Quit"),
	)
}

func (m Model) viewSearch() string {
	sections := []string{
		titleStyle.Render("Bite Forecast"),
		mutedStyle.Render("Moon, weather and safety outlook for anglers"),
		"",
		searchBoxStyle.Render(m.searchInput.View()),
		"",
		mutedStyle.Render("Examples: 02633 | Chatham, MA | Destin, FL | 40.71,-74.01"),
		helpStyle.Render("Press Enter to search • Ctrl+C to quit"),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewLoading() string {
	step := "Finding location"
	if m.location != nil {
		step = fmt.Sprintf("Building %d-day forecast for %s", m.opts.Days, m.location.Name)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), step)
}

func (m Model) viewDays() string {
	name := m.searchQuery
	if m.location != nil {
		name = m.location.Name
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Bite Forecast"),
		mutedStyle.Render(name),
		m.dayList.View(),
		helpStyle.Render("↑/↓: Navigate • Enter: Details • S/Esc: New search • Q: Quit"),
	)
}

func (m Model) viewDetail() string {
	if m.selected < 0 || m.selected >= len(m.days) {
		return "No day selected"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		sectionBoxStyle.Render(renderDay(m.days[m.selected])),
		helpStyle.Render("←/→: Previous/next day • Esc: Back • S: New search • Q: Quit"),
	)
}
