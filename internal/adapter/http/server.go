package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/forecast-report-service/internal/domain"
)

const maxDocumentBytes = 1 << 20

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReportArchive looks up previously rendered reports.
type ReportArchive interface {
	Latest(ctx context.Context, key string) (domain.ArchivedReport, error)
}

// Option configures optional routes and defaults on a Server.
type Option func(*Server)

// WithReportMode sets the max-temperature display mode used when a request
// does not pass fix_max.
func WithReportMode(mode domain.MaxTemperatureMode) Option {
	return func(s *Server) { s.mode = mode }
}

// WithForecaster enables GET /api/v1/forecast/{locationKey}/report.
func WithForecaster(f domain.Forecaster) Option {
	return func(s *Server) { s.forecaster = f }
}

// WithArchive enables GET /api/v1/reports/{key}.
func WithArchive(a ReportArchive) Option {
	return func(s *Server) { s.archive = a }
}

// Server exposes health, readiness, metrics, and report endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	mode       domain.MaxTemperatureMode
	forecaster domain.Forecaster
	archive    ReportArchive
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// report API routes.
func NewServer(addr string, ready ReadinessChecker, logger *slog.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/report", s.handleReport)
	mux.HandleFunc("POST /api/v1/series", s.handleSeries)
	if s.forecaster != nil {
		mux.HandleFunc("GET /api/v1/forecast/{locationKey}/report", s.handleForecastReport)
	}
	if s.archive != nil {
		mux.HandleFunc("GET /api/v1/reports/{key}", s.handleArchivedReport)
	}

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

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	mode := s.mode
	if v := r.URL.Query().Get("fix_max"); v != "" {
		fix, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid fix_max: "+v)
			return
		}
		mode = domain.MaxTemperatureLegacy
		if fix {
			mode = domain.MaxTemperatureCorrected
		}
	}

	forecasts, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	report, err := domain.BuildReport(forecasts, mode)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeText(w, http.StatusOK, report.Text)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	realFeel, _ := strconv.ParseBool(r.URL.Query().Get("realfeel"))

	forecasts, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	var (
		series any
		err    error
	)
	if realFeel {
		series, err = domain.BuildRealFeelSeries(forecasts)
	} else {
		series, err = domain.BuildTemperatureSeries(forecasts)
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleForecastReport(w http.ResponseWriter, r *http.Request) {
	locationKey := r.PathValue("locationKey")

	forecasts, err := s.forecaster.DailyForecasts(r.Context(), locationKey)
	if err != nil {
		s.logger.Warn("forecast fetch failed", "location_key", locationKey, "error", err)
		writeError(w, http.StatusBadGateway, "forecast provider error")
		return
	}
	if len(forecasts) == 0 {
		writeError(w, http.StatusNotFound, "no forecast for location "+locationKey)
		return
	}

	report, err := domain.BuildReport(forecasts, s.mode)
	if err != nil {
		s.logger.Warn("provider forecast could not be rendered", "location_key", locationKey, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeText(w, http.StatusOK, report.Text)
}

func (s *Server) handleArchivedReport(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	report, err := s.archive.Latest(r.Context(), key)
	if errors.Is(err, domain.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "no report archived for "+key)
		return
	}
	if err != nil {
		s.logger.Error("archive lookup failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "archive lookup failed")
		return
	}

	w.Header().Set("X-Report-Generated-At", report.GeneratedAt.Format(time.RFC3339))
	w.Header().Set("X-Report-Day-Count", strconv.Itoa(report.DayCount))
	writeText(w, http.StatusOK, report.Body)
}

// readDocument parses the request body as a forecast document. On failure it
// writes the error response and returns false.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) ([]domain.DailyForecast, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return nil, false
	}
	forecasts, err := domain.ParseForecastDocument(body)
	if err != nil {
		s.writeDomainError(w, err)
		return nil, false
	}
	return forecasts, true
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch domain.ErrorKind(err) {
	case domain.KindParse, domain.KindMissingField, domain.KindEmptyInput, domain.KindDecode:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("report request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", domain.ReportContentType)
	w.WriteHeader(status)
	io.WriteString(w, text) //nolint:errcheck // client went away
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
