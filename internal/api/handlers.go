package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ngmaloney/bite-forecast/internal/models"
)

// Error codes returned in ErrorDetail.Code
const (
	CodeInvalidParameter = "invalid_parameter"
	CodeOutOfDomain      = "out_of_domain"
	CodeInvalidDateRange = "invalid_date_range"
	CodeInternal         = "internal_error"
	CodeNotReady         = "not_ready"
)

type forecastQuery struct {
	Lat   float64 `validate:"gte=-90,lte=90"`
	Lon   float64 `validate:"gte=-180,lte=180"`
	Start string  `validate:"omitempty,datetime=2006-01-02"`
	Days  int     `validate:"gte=1"`
}

// ForecastResponse is the body of GET /v1/forecast
type ForecastResponse struct {
	RunID       string                 `json:"runId"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Lat         float64                `json:"lat"`
	Lon         float64                `json:"lon"`
	StartDate   string                 `json:"startDate"`
	Days        []models.ForecastScore `json:"days"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q, msg := s.parseForecastQuery(r)
	if msg != "" {
		writeError(w, r, http.StatusBadRequest, CodeInvalidParameter, msg)
		return
	}

	days, err := s.forecaster.GenerateForecast(r.Context(), q.Lat, q.Lon, q.Start, q.Days, s.almanac)
	switch {
	case errors.Is(err, models.ErrOutOfDomain):
		writeError(w, r, http.StatusBadRequest, CodeOutOfDomain, err.Error())
		return
	case errors.Is(err, models.ErrInvalidDateRange):
		writeError(w, r, http.StatusBadRequest, CodeInvalidDateRange, err.Error())
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "forecast failed", "lat", q.Lat, "lon", q.Lon, "error", err)
		writeError(w, r, http.StatusInternalServerError, CodeInternal, "an unexpected error occurred")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, ForecastResponse{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Lat:         q.Lat,
		Lon:         q.Lon,
		StartDate:   q.Start,
		Days:        days,
	})
}

// parseForecastQuery returns a non-empty message when the query is invalid.
// start defaults to today and days to 1.
func (s *Server) parseForecastQuery(r *http.Request) (forecastQuery, string) {
	values := r.URL.Query()
	q := forecastQuery{Start: values.Get("start"), Days: 1}

	latStr, lonStr := values.Get("lat"), values.Get("lon")
	if latStr == "" || lonStr == "" {
		return q, "lat and lon query parameters are required"
	}
	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, "lat must be a valid number"
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, "lon must be a valid number"
	}
	if d := values.Get("days"); d != "" {
		if q.Days, err = strconv.Atoi(d); err != nil {
			return q, "days must be an integer"
		}
	}

	if err := s.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return q, "invalid " + fieldParam(verrs[0].Field())
		}
		return q, err.Error()
	}
	if q.Start == "" {
		q.Start = s.forecaster.Today()
	}
	return q, ""
}

func fieldParam(field string) string {
	switch field {
	case "Lat":
		return "lat"
	case "Lon":
		return "lon"
	case "Start":
		return "start (expected YYYY-MM-DD)"
	case "Days":
		return "days"
	}
	return field
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// handleReady runs every probe under one short deadline
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Components: map[string]string{}}
	status := http.StatusOK
	for _, p := range s.probes {
		if err := p.Check(ctx); err != nil {
			s.logger.WarnContext(ctx, "readiness probe failed", "probe", p.Name, "error", err)
			resp.Components[p.Name] = err.Error()
			resp.Status = CodeNotReady
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[p.Name] = "ok"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	}})
}
