// Package server exposes the favicon engine over HTTP for the UI layer.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/shelf/internal/application/port"
	"github.com/bnema/shelf/internal/application/usecase"
	"github.com/bnema/shelf/internal/domain/entity"
	"github.com/bnema/shelf/internal/logging"
)

// FaviconService is the favicon surface the HTTP handlers need.
type FaviconService interface {
	port.FaviconResolver
	PeekCache(ctx context.Context, domain string) entity.IconResult
	ClearFailureRegistry(ctx context.Context)
	Stats(ctx context.Context) entity.CacheStats
}

// Migrator runs the legacy favicon migration.
type Migrator interface {
	Execute(ctx context.Context) (*usecase.FaviconJobReport, error)
}

// CategoryRefresher force-refreshes the favicons of one category.
type CategoryRefresher interface {
	Execute(ctx context.Context, categoryID entity.CategoryID) (*usecase.FaviconJobReport, error)
}

// Deps are the collaborators of the HTTP handler. Metrics may be nil.
type Deps struct {
	Favicons FaviconService
	Migrate  Migrator
	Refresh  CategoryRefresher
	Metrics  http.Handler
}

type iconResponse struct {
	Icon   *string `json:"icon"`
	Source string  `json:"source"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler builds the router for the favicon API.
func NewHandler(ctx context.Context, deps Deps) http.Handler {
	h := &handler{deps: deps}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/favicons", h.resolve)
	mux.HandleFunc("POST /api/favicons/refresh", h.refresh)
	mux.HandleFunc("GET /api/favicons/cache/{domain}", h.peek)
	mux.HandleFunc("DELETE /api/favicons/failures", h.clearFailures)
	mux.HandleFunc("GET /api/favicons/stats", h.stats)
	mux.HandleFunc("POST /api/favicons/migrate", h.migrate)
	mux.HandleFunc("POST /api/categories/{id}/favicons/refresh", h.refreshCategory)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	return withLogger(ctx, mux)
}

type handler struct {
	deps Deps
}

func (h *handler) resolve(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
		return
	}
	writeJSON(w, http.StatusOK, toIconResponse(h.deps.Favicons.Resolve(r.Context(), raw)))
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
		return
	}
	writeJSON(w, http.StatusOK, toIconResponse(h.deps.Favicons.ForceRefresh(r.Context(), raw)))
}

func (h *handler) peek(w http.ResponseWriter, r *http.Request) {
	res := h.deps.Favicons.PeekCache(r.Context(), r.PathValue("domain"))
	if !res.OK() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not cached"})
		return
	}
	writeJSON(w, http.StatusOK, toIconResponse(res))
}

func (h *handler) clearFailures(w http.ResponseWriter, r *http.Request) {
	h.deps.Favicons.ClearFailureRegistry(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Favicons.Stats(r.Context()))
}

func (h *handler) migrate(w http.ResponseWriter, r *http.Request) {
	if h.deps.Migrate == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "bookmark store unavailable"})
		return
	}
	report, err := h.deps.Migrate.Execute(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("favicon migration failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "migration failed"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) refreshCategory(w http.ResponseWriter, r *http.Request) {
	if h.deps.Refresh == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "bookmark store unavailable"})
		return
	}
	id := entity.CategoryID(r.PathValue("id"))
	report, err := h.deps.Refresh.Execute(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Str("category", string(id)).Msg("category favicon refresh failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "refresh failed"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func toIconResponse(res entity.IconResult) iconResponse {
	out := iconResponse{Source: string(res.Source)}
	if res.OK() {
		data := res.Data
		out.Icon = &data
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogger attaches the base logger to every request context and logs
// each request at debug level.
func withLogger(base context.Context, next http.Handler) http.Handler {
	logger := *logging.FromContext(base)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithContext(r.Context(), logger)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(ctx))

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
