package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ngmaloney/bite-forecast/internal/api"
	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/geocoding"
	"github.com/ngmaloney/bite-forecast/internal/models"
	"github.com/ngmaloney/bite-forecast/internal/noaa"
	"github.com/ngmaloney/bite-forecast/internal/safety"
	"github.com/ngmaloney/bite-forecast/internal/stations"
	"github.com/ngmaloney/bite-forecast/internal/ui"
)

// geocoder resolves locations from the zipcode table when it is present
// and from Nominatim otherwise
func (a *app) geocoder() (*geocoding.Geocoder, error) {
	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	nominatim := geocoding.NewNominatim("", nil,
		external.WithUserAgent(a.cfg.UserAgent), external.WithObserver(a.metrics))
	return geocoding.NewGeocoder(db, nominatim), nil
}

func (a *app) runForecast(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	lat := fs.Float64("lat", 0, "latitude")
	lon := fs.Float64("lon", 0, "longitude")
	location := fs.String("location", "", "zipcode, \"City, ST\" or free text instead of --lat/--lon")
	start := fs.String("start", "", "first day (YYYY-MM-DD), default today")
	days := fs.Int("days", 7, "number of days")
	format := fs.String("format", "json", "output format: json or text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "json" && *format != "text" {
		return fmt.Errorf("unknown format %q", *format)
	}

	name := fmt.Sprintf("%.4f, %.4f", *lat, *lon)
	if *location != "" {
		g, err := a.geocoder()
		if err != nil {
			return err
		}
		loc, err := g.Geocode(ctx, *location)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", *location, err)
		}
		*lat, *lon, name = loc.Latitude, loc.Longitude, loc.Name
	} else if !flagSet(fs, "lat") || !flagSet(fs, "lon") {
		return errors.New("either --location or both --lat and --lon are required")
	}
	if *start == "" {
		*start = a.assembler.Today()
	}

	scores, err := a.assembler.GenerateForecast(ctx, *lat, *lon, *start, *days, a.almanac)
	if err != nil {
		return err
	}

	if *format == "text" {
		return writeTable(out, name, scores)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(scores)
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// writeTable prints one row per day followed by the tips for each day
func writeTable(out io.Writer, name string, scores []models.ForecastScore) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Score", "Moon", "Weather", "Safety", "Temp", "Wind", "Trend", "Source")
	for _, s := range scores {
		t.Row(
			s.Date,
			fmt.Sprintf("%.1f", s.BiteScore),
			s.Moon.PhaseName,
			fmt.Sprintf("%.1f", s.Components.Weather),
			s.Weather.Safety.Rating.String(),
			fmt.Sprintf("%.0f°C", s.Weather.TempC),
			fmt.Sprintf("%.0f km/h", s.Weather.WindKph),
			string(s.Weather.BarometricTrend),
			string(s.Weather.Source),
		)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", name, t.Render())
	for _, s := range scores {
		fmt.Fprintf(&b, "\n%s\n", s.Date)
		for _, tip := range safety.FishingTips(&s.Weather) {
			fmt.Fprintf(&b, "  - %s\n", tip)
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func (a *app) runTUI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	location := fs.String("location", "", "search this location on start")
	days := fs.Int("days", 7, "number of days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := a.geocoder()
	if err != nil {
		return err
	}
	opts := ui.Options{
		Geocoder:   g,
		Forecaster: a.assembler,
		Almanac:    a.almanac,
		Days:       min(*days, a.assembler.MaxDays()),
		Query:      *location,
	}

	db, _ := a.openDB()
	if needs, err := geocoding.NeedsProvisioning(db); err == nil && needs {
		opts.Provision = func(ctx context.Context, progress chan<- string) error {
			progress <- "Downloading US zipcode data..."
			n, err := geocoding.ProvisionZipcodes(ctx, db, "", a.logger,
				external.WithUserAgent(a.cfg.UserAgent))
			if err != nil {
				return err
			}
			progress <- fmt.Sprintf("Loaded %d zipcodes", n)
			return nil
		}
	}

	p := tea.NewProgram(ui.NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

func (a *app) runServe(ctx context.Context) error {
	if _, err := a.openDB(); err != nil {
		return err
	}
	srv := api.NewServer(a.assembler,
		api.WithAlmanac(a.almanac),
		api.WithLogger(a.logger),
		api.WithMetricsHandler(promhttp.Handler()),
		api.WithProbes(api.Probe{Name: "database", Check: a.pingDB}),
	)
	httpServer := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: a.cfg.ShutdownTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

func (a *app) runStations(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("stations requires a subcommand: provision or near")
	}
	db, err := a.openDB()
	if err != nil {
		return err
	}

	switch args[0] {
	case "provision":
		n, err := stations.Provision(ctx, db, a.metadata, noaa.StationTypes, nil, a.logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Provisioned %d catalog entries into %s\n", n, a.cfg.DBPath)
		return nil

	case "near":
		fs := flag.NewFlagSet("stations near", flag.ContinueOnError)
		lat := fs.Float64("lat", 0, "latitude")
		lon := fs.Float64("lon", 0, "longitude")
		radius := fs.Float64("radius", 50, "search radius in km")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if needs, err := stations.NeedsProvisioning(db); err != nil {
			return err
		} else if needs {
			return errors.New("station catalog is empty; run `bite-forecast stations provision` first")
		}

		found, err := stations.NewCatalog(db).FindNearby(ctx, *lat, *lon, *radius)
		if err != nil {
			return err
		}
		for _, s := range found {
			fmt.Fprintf(out, "%-8s %-18s %-32s %6.1f km\n", s.ID, s.Type, s.Name, s.DistanceKm)
		}
		return nil
	}
	return fmt.Errorf("unknown stations subcommand %q", args[0])
}

func (a *app) runZipcodes(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "provision" {
		return errors.New("usage: bite-forecast zipcodes provision")
	}
	db, err := a.openDB()
	if err != nil {
		return err
	}
	_, err = geocoding.ProvisionZipcodes(ctx, db, "", a.logger,
		external.WithUserAgent(a.cfg.UserAgent), external.WithObserver(a.metrics))
	return err
}
