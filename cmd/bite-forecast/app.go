package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/bite-forecast/internal/almanac"
	"github.com/ngmaloney/bite-forecast/internal/config"
	"github.com/ngmaloney/bite-forecast/internal/database"
	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/forecast"
	"github.com/ngmaloney/bite-forecast/internal/fusion"
	"github.com/ngmaloney/bite-forecast/internal/noaa"
	"github.com/ngmaloney/bite-forecast/internal/observability"
	"github.com/ngmaloney/bite-forecast/internal/openmeteo"
	"github.com/ngmaloney/bite-forecast/internal/spc"
	"github.com/ngmaloney/bite-forecast/internal/stations"
)

// app holds the wired forecast pipeline
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	assembler *forecast.Assembler
	almanac   almanac.Source
	metadata  *noaa.MetadataClient
	db        *sql.DB
}

// withTimeout copies opts and adds an http.Client with its own timeout
func withTimeout(opts []external.Option, c *http.Client) []external.Option {
	return append(append([]external.Option{}, opts...), external.WithHTTPClient(c))
}

// newApp wires providers, the fusion engine and the assembler from cfg
func newApp(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*app, error) {
	base := []external.Option{
		external.WithUserAgent(cfg.UserAgent),
		external.WithObserver(metrics),
	}
	clock := clockwork.NewRealClock()

	a := &app{cfg: cfg, logger: logger, metrics: metrics}

	nws := noaa.NewNWSClient(cfg.NWSBaseURL, logger,
		withTimeout(base, &http.Client{Timeout: cfg.NWSTimeout})...)
	meteo := openmeteo.NewClient(cfg.OpenMeteoURL, clock,
		withTimeout(base, &http.Client{Timeout: cfg.OpenMeteoTimeout})...)
	a.metadata = noaa.NewMetadataClient(cfg.COOPSMetadataURL,
		withTimeout(base, &http.Client{Timeout: cfg.COOPSTimeout})...)

	engineOpts := []fusion.Option{
		fusion.WithClock(clock),
		fusion.WithRecorder(metrics),
		fusion.WithLogger(logger),
	}

	if cfg.MarineEnabled {
		var source noaa.StationSource = a.metadata
		if cfg.StationCatalog {
			db, err := a.openDB()
			if err != nil {
				return nil, err
			}
			needs, err := stations.NeedsProvisioning(db)
			if err != nil {
				return nil, err
			}
			if needs {
				logger.Warn("station catalog is empty, using the metadata API; run `bite-forecast stations provision`",
					"path", cfg.DBPath)
			} else {
				source = stations.NewCatalog(db)
				logger.Info("using offline station catalog", "path", cfg.DBPath)
			}
		}
		tides := noaa.NewTideClient(cfg.COOPSDataURL,
			withTimeout(base, &http.Client{Timeout: cfg.COOPSTimeout})...)
		marine := noaa.NewMarineAdapter(source, a.metadata, tides, noaa.NewProductCache(), logger)
		engineOpts = append(engineOpts, fusion.WithMarine(marine))
	}

	if cfg.OutlookEnabled {
		outlook := spc.NewClient(cfg.SPCURL,
			withTimeout(base, &http.Client{Timeout: cfg.SPCTimeout})...)
		engineOpts = append(engineOpts, fusion.WithOutlook(outlook))
	}

	engine := fusion.NewEngine(nws, meteo, engineOpts...)
	a.assembler = forecast.NewAssembler(engine,
		forecast.WithMaxDays(cfg.MaxDays),
		forecast.WithDayConcurrency(cfg.DayConcurrency),
		forecast.WithClock(clock),
		forecast.WithRecorder(metrics),
		forecast.WithLogger(logger),
	)

	src, err := loadAlmanac(cfg, base)
	if err != nil {
		return nil, err
	}
	a.almanac = src
	return a, nil
}

// loadAlmanac returns the configured almanac source, or nil. The file wins
// when both a file and an API are configured.
func loadAlmanac(cfg *config.Config, opts []external.Option) (almanac.Source, error) {
	switch {
	case cfg.AlmanacFile != "":
		src, err := almanac.LoadFile(cfg.AlmanacFile)
		if err != nil {
			return nil, err
		}
		return src, nil
	case cfg.AlmanacAPIURL != "":
		return almanac.NewAPISource(cfg.AlmanacAPIURL, cfg.AlmanacAPIKey, opts...), nil
	}
	return nil, nil
}

// openDB opens the shared sqlite database once
func (a *app) openDB() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("closing database", "error", err)
		}
	}
}

// pingDB is the readiness probe for the sqlite database
func (a *app) pingDB(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.PingContext(ctx)
}
