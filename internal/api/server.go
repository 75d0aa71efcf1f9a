// Package api is the HTTP presentation surface. Handlers translate between
// JSON and the services; no availability or lifecycle decisions are made
// here.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"grislo/internal/config"
	"grislo/internal/domain"
	"grislo/internal/metrics"

	"github.com/rs/zerolog"
)

// sessionHeader carries the caller's opaque session identifier used to scope
// the my-reservations view.
const sessionHeader = "X-Session-ID"

// Exporter produces the admin XLSX report.
type Exporter interface {
	ReservationsXLSX(ctx context.Context, startDate, endDate time.Time) (string, error)
}

type Server struct {
	cfg          config.APIConfig
	reservations domain.ReservationService
	schedule     domain.ScheduleService
	exporter     Exporter
	auth         *HTTPAuth
	server       *http.Server
	logger       *zerolog.Logger
}

func NewServer(
	cfg config.APIConfig,
	reservations domain.ReservationService,
	schedule domain.ScheduleService,
	exporter Exporter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:          cfg,
		reservations: reservations,
		schedule:     schedule,
		exporter:     exporter,
		auth:         NewHTTPAuth(cfg),
		logger:       logger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return s
}

// Handler assembles the full middleware stack, exported for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/calendar", s.handleCalendar)
	mux.HandleFunc("/api/v1/days/", s.handleDay)
	mux.HandleFunc("/api/v1/locations", s.handleLocations)
	mux.HandleFunc("/api/v1/reservations", s.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", s.handleReservationByID)
	mux.HandleFunc("/api/v1/admin/reservations/", s.handleAdminCancel)
	mux.HandleFunc("/api/v1/admin/schedule", s.handleAdminSchedule)
	mux.HandleFunc("/api/v1/admin/locations", s.handleAdminLocations)
	mux.HandleFunc("/api/v1/admin/locations/", s.handleAdminLocationByID)
	mux.HandleFunc("/api/v1/admin/stats", s.handleAdminStats)
	mux.HandleFunc("/api/v1/admin/upcoming", s.handleAdminUpcoming)
	mux.HandleFunc("/api/v1/admin/export", s.handleAdminExport)
	mux.HandleFunc("/healthz", s.handleHealth)

	return s.loggingMiddleware(s.auth.Wrap(mux))
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
