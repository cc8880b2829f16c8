package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/couchcryptid/quake-data-viewer/internal/export"
	"github.com/couchcryptid/quake-data-viewer/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service answers date-range queries and builds exports.
// It is implemented by *pipeline.Pipeline.
type Service interface {
	sharedobs.ReadinessChecker
	Query(ctx context.Context, r domain.DateRange) (pipeline.Result, error)
	Export(ctx context.Context, r domain.DateRange, f export.Format) (export.Artifact, error)
}

// Server exposes the earthquake API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        Service
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/earthquakes, /healthz, /readyz,
// and /metrics routes.
func NewServer(addr string, svc Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /api/earthquakes", s.handleQuery)
	mux.HandleFunc("GET /api/earthquakes/{file}", s.handleExport)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

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

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type recordResponse struct {
	domain.Record
	Tier domain.Tier `json:"tier"`
}

type queryResponse struct {
	Range   rangeResponse    `json:"range"`
	Summary domain.Summary   `json:"summary"`
	Records []recordResponse `json:"records"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.svc.Query(r.Context(), rng)
	if err != nil {
		s.writeError(w, err)
		return
	}

	records := make([]recordResponse, len(result.Records))
	for i, rec := range result.Records {
		records[i] = recordResponse{Record: rec, Tier: rec.Tier()}
	}
	sharedobs.WriteJSON(w, http.StatusOK, queryResponse{
		Range: rangeResponse{
			Start: result.Range.Start.Format(domain.DateLayout),
			End:   result.Range.End.Format(domain.DateLayout),
		},
		Summary: result.Summary,
		Records: records,
	})
}

// handleExport serves /api/earthquakes/export.<format>.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name, ext, ok := strings.Cut(r.PathValue("file"), ".")
	if !ok || name != "export" {
		http.NotFound(w, r)
		return
	}
	format, err := export.ParseFormat(ext)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	artifact, err := s.svc.Export(r.Context(), rng, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		s.logger.Warn("write export failed", "file", artifact.FileName, "error", err)
	}
}

func parseRange(r *http.Request) (domain.DateRange, error) {
	q := r.URL.Query()
	return domain.ParseDateRange(q.Get("start"), q.Get("end"))
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var upErr *domain.UpstreamError
	var mfErr *domain.MissingFieldError
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData):
		return http.StatusNotFound
	case errors.As(err, &upErr), errors.As(err, &mfErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
