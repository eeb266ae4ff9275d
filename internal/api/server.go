// Package api exposes the HTTP trigger surface: run one source, run all
// eligible sources, plus health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/grantwatch/harvester/internal/harvest"
	"github.com/grantwatch/harvester/internal/telemetry"
)

// SourceHarvester runs one source pipeline.
type SourceHarvester interface {
	RunSource(ctx context.Context, src harvest.Source) (int, error)
}

// RunLauncher runs every eligible source.
type RunLauncher interface {
	Run(ctx context.Context) (harvest.RunReport, error)
}

// Config holds the server settings.
type Config struct {
	Secret     string
	RunTimeout time.Duration
}

// Server wires the trigger endpoints onto a chi router.
type Server struct {
	sources   harvest.SourceStore
	harvester SourceHarvester
	launcher  RunLauncher
	cfg       Config
	logger    *zap.Logger
	router    chi.Router
}

// New builds the server and its middleware chain.
func New(sources harvest.SourceStore, harvester SourceHarvester, launcher RunLauncher, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	s := &Server{
		sources:   sources,
		harvester: harvester,
		launcher:  launcher,
		cfg:       cfg,
		logger:    logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))
	r.Use(telemetry.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Group(func(r chi.Router) {
		r.Use(requireSecret(s.cfg.Secret))
		r.Use(middleware.Timeout(s.cfg.RunTimeout))
		r.Post("/v1/harvest/source", s.handleHarvestSource)
		r.Post("/v1/harvest/all", s.handleHarvestAll)
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type harvestSourceRequest struct {
	SourceID string `json:"source_id"`
}

func (s *Server) handleHarvestSource(w http.ResponseWriter, r *http.Request) {
	var req harvestSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.SourceID = strings.TrimSpace(req.SourceID)
	if req.SourceID == "" {
		writeError(w, http.StatusBadRequest, "source_id is required")
		return
	}

	src, err := s.sources.GetSource(r.Context(), req.SourceID)
	if err != nil {
		writeError(w, http.StatusNotFound, "source not found")
		return
	}

	count, err := s.harvester.RunSource(r.Context(), src)
	switch {
	case errors.Is(err, harvest.ErrSourceBusy):
		writeError(w, http.StatusConflict, "source is already processing")
		return
	case err != nil:
		s.logger.Error("harvest source failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("source_id", req.SourceID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "harvest failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"grants_count": count,
	})
}

func (s *Server) handleHarvestAll(w http.ResponseWriter, r *http.Request) {
	report, err := s.launcher.Run(r.Context())
	if err != nil {
		s.logger.Error("harvest all failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "harvest failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"processed": report.Processed,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"grants":    report.Grants,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
