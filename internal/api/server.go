// Package api serves forecasts over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/ngmaloney/bite-forecast/internal/almanac"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

const (
	defaultRequestTimeout = 60 * time.Second
	readinessTimeout      = 2 * time.Second
)

// Forecaster produces multi-day forecasts. forecast.Assembler implements it.
type Forecaster interface {
	GenerateForecast(ctx context.Context, lat, lon float64, startDate string, days int, src almanac.Source) ([]models.ForecastScore, error)
	MaxDays() int
	Today() string
}

// Probe is one readiness check
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server routes forecast, health and metrics requests
type Server struct {
	router     *chi.Mux
	forecaster Forecaster
	almanac    almanac.Source
	validate   *validator.Validate
	logger     *slog.Logger
	probes     []Probe
	metrics    http.Handler
	timeout    time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithAlmanac sets the almanac source passed to every forecast
func WithAlmanac(src almanac.Source) Option {
	return func(s *Server) { s.almanac = src }
}

// WithProbes registers readiness checks for /readyz
func WithProbes(probes ...Probe) Option {
	return func(s *Server) { s.probes = append(s.probes, probes...) }
}

// WithMetricsHandler mounts h at /metrics
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRequestTimeout bounds the time spent on one request
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer builds the router
func NewServer(f Forecaster, opts ...Option) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		forecaster: f,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     slog.Default(),
		timeout:    defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger(s.logger))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/readyz", s.handleReady)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}

	s.router.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Get("/forecast", s.handleForecast)
	})
}

// requestLogger logs method, path, status and duration for every request
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			}
			switch {
			case status >= 500:
				logger.ErrorContext(r.Context(), "request completed", attrs...)
			case status >= 400:
				logger.WarnContext(r.Context(), "request completed", attrs...)
			default:
				logger.DebugContext(r.Context(), "request completed", attrs...)
			}
		})
	}
}
