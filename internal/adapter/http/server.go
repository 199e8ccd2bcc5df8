// Package http exposes the monitor's query API plus health, readiness,
// and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aerowatch/air-traffic-monitor/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// LiveProvider supplies the latest regional flight set.
type LiveProvider interface {
	Live() []domain.FlightRecord
}

// AirportDirectory resolves reference airports.
type AirportDirectory interface {
	Airport(ctx context.Context, code string) (domain.Airport, error)
	Airports(ctx context.Context) ([]domain.Airport, error)
}

// Options carries the query-policy settings the handlers apply.
type Options struct {
	Addr string

	// Bounds and the altitude defaults applied when a live query omits
	// min_alt or max_alt.
	Bounds      domain.RegionBounds
	MinAltitude float64
	MaxAltitude float64

	Congestion domain.CongestionThresholds
}

// Server exposes the flight query API over HTTP.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	live      LiveProvider
	snapshots domain.SnapshotQuerier
	airports  AirportDirectory
	weather   domain.WeatherSource // nil when no provider is configured
	opts      Options
}

// NewServer creates the HTTP server and registers all routes. weather may
// be nil; weather queries then answer with an unconfigured error.
func NewServer(opts Options, live LiveProvider, snapshots domain.SnapshotQuerier, airports AirportDirectory, weather domain.WeatherSource, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:    logger,
		live:      live,
		snapshots: snapshots,
		airports:  airports,
		weather:   weather,
		opts:      opts,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/flights/live", s.handleLiveFlights)
	mux.HandleFunc("GET /api/stats/summary", s.handleStatsSummary)
	mux.HandleFunc("GET /api/airports", s.handleAirports)
	mux.HandleFunc("GET /api/airports/{code}/weather", s.handleAirportWeather)
	mux.HandleFunc("GET /api/airports/{code}/traffic", s.handleAirportTraffic)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type liveFlightsResponse struct {
	Count   int                   `json:"count"`
	Flights []domain.FlightRecord `json:"flights"`
}

// handleLiveFlights filters the cached regional flight set by the query's
// altitude band and callsign fragment.
func (s *Server) handleLiveFlights(w http.ResponseWriter, r *http.Request) {
	minAlt, err := floatQuery(r, "min_alt", s.opts.MinAltitude)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid min_alt")
		return
	}
	maxAlt, err := floatQuery(r, "max_alt", s.opts.MaxAltitude)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid max_alt")
		return
	}

	flights := domain.FilterRegion(s.live.Live(), domain.FilterParams{
		Bounds:      s.opts.Bounds,
		MinAltitude: minAlt,
		MaxAltitude: maxAlt,
		Callsign:    strings.TrimSpace(r.URL.Query().Get("callsign")),
	})
	if flights == nil {
		flights = []domain.FlightRecord{}
	}

	writeJSON(w, http.StatusOK, liveFlightsResponse{Count: len(flights), Flights: flights})
}

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := domain.SummarizeCongestion(r.Context(), s.snapshots, domain.Now(), s.opts.Congestion)
	if err != nil {
		s.logger.Error("congestion summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := s.airports.Airports(r.Context())
	if err != nil {
		s.logger.Error("airport listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "airports unavailable")
		return
	}
	writeJSON(w, http.StatusOK, airports)
}

type airportWeatherResponse struct {
	Airport   string  `json:"airport"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	TempC     float64 `json:"temp"`
	Condition string  `json:"condition"`
	WindSpeed float64 `json:"wind_speed"`
	Risk      string  `json:"risk"`
}

func (s *Server) handleAirportWeather(w http.ResponseWriter, r *http.Request) {
	airport, ok := s.lookupAirport(w, r)
	if !ok {
		return
	}

	if s.weather == nil {
		writeError(w, http.StatusInternalServerError, "weather provider not configured")
		return
	}

	obs, err := s.weather.Current(r.Context(), airport.Lat, airport.Lon)
	if errors.Is(err, domain.ErrWeatherUnconfigured) {
		writeError(w, http.StatusInternalServerError, "weather provider not configured")
		return
	}
	if err != nil {
		s.logger.Error("weather lookup failed", "airport", airport.Code, "error", err)
		writeError(w, http.StatusBadGateway, "weather unavailable")
		return
	}

	writeJSON(w, http.StatusOK, airportWeatherResponse{
		Airport:   airport.Code,
		Name:      airport.Name,
		City:      airport.City,
		Country:   airport.Country,
		TempC:     obs.TempC,
		Condition: obs.Description,
		WindSpeed: obs.WindSpeedMs,
		Risk:      string(domain.RiskFor(obs.Condition, obs.WindSpeedMs)),
	})
}

type airportTrafficResponse struct {
	domain.TrafficClassification
	Name string `json:"name"`
}

func (s *Server) handleAirportTraffic(w http.ResponseWriter, r *http.Request) {
	airport, ok := s.lookupAirport(w, r)
	if !ok {
		return
	}

	classification := domain.ClassifyAirportTraffic(airport, s.live.Live())
	writeJSON(w, http.StatusOK, airportTrafficResponse{
		TrafficClassification: classification,
		Name:                  airport.Name,
	})
}

// lookupAirport resolves the {code} path segment, writing the error
// response itself when the airport is unknown or the lookup fails.
func (s *Server) lookupAirport(w http.ResponseWriter, r *http.Request) (domain.Airport, bool) {
	code := strings.ToUpper(r.PathValue("code"))
	airport, err := s.airports.Airport(r.Context(), code)
	if errors.Is(err, domain.ErrAirportNotFound) {
		writeError(w, http.StatusNotFound, "unknown airport")
		return domain.Airport{}, false
	}
	if err != nil {
		s.logger.Error("airport lookup failed", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, "airport lookup failed")
		return domain.Airport{}, false
	}
	return airport, true
}

func floatQuery(r *http.Request, key string, fallback float64) (float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(s, 64)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
