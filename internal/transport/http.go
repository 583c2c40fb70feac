package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kcalabs/kca-projects/internal/backup"
	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/project"
	"github.com/kcalabs/kca-projects/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RPCHandler dispatches a JSON-RPC method on behalf of an actor.
type RPCHandler interface {
	Handle(ctx context.Context, actor, method string, params json.RawMessage) (any, error)
}

// Collection is the part of the project service the backup routes need.
type Collection interface {
	List() []project.Project
	Import(ctx context.Context, projects []project.Project, mode project.ImportMode) (project.ImportResult, error)
}

// Options configures the HTTP router.
type Options struct {
	Handler    RPCHandler
	Collection Collection
	// Auth guards /rpc and /backup. Nil leaves them open.
	Auth func(http.Handler) http.Handler
	// MCP is mounted at /mcp when set. It authenticates on its own.
	MCP    http.Handler
	Logger *slog.Logger
	Now    func() time.Time
}

// Server wires HTTP handlers.
type Server struct {
	handler    RPCHandler
	collection Collection
	logger     *slog.Logger
	now        func() time.Time
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	srv := &Server{
		handler:    opts.Handler,
		collection: opts.Collection,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if srv.logger == nil {
		srv.logger = slog.New(slog.DiscardHandler)
	}
	if srv.now == nil {
		srv.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observe(srv.logger))

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		r.Post("/rpc", srv.handleRPC)
		if srv.collection != nil {
			r.Get("/backup", srv.handleExport)
			r.Post("/backup", srv.handleImport)
		}
	})

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	result, err := s.handler.Handle(r.Context(), actor, req.Method, req.Params)
	if err != nil {
		var coded CodedError
		if errors.As(err, &coded) {
			WriteCodedError(w, req.ID, coded)
			return
		}
		s.logger.Error("rpc failed", "method", req.Method, "error", err)
		WriteError(w, req.ID, ErrInternal, err.Error(), nil)
		return
	}

	WriteResult(w, req.ID, result)
}

// handleExport streams the collection as a downloadable backup.
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", backup.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.DefaultFilename(s.now())))
	if err := backup.Export(w, s.collection.List()); err != nil {
		s.logger.Error("export failed", "error", err)
	}
}

type httpError struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// handleImport restores a backup posted as the request body. ?mode=merge
// keeps existing projects.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mode, err := project.ParseImportMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, httpError{Error: err.Error()})
		return
	}

	records, err := backup.Import(r.Context(), r.Body, r.Header.Get("Content-Type"))
	if err != nil {
		s.writeImportError(w, err)
		return
	}

	result, err := s.collection.Import(r.Context(), records, mode)
	if err != nil {
		s.writeImportError(w, err)
		return
	}
	metrics.RecordImport(result.Imported, result.Skipped)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeImportError(w http.ResponseWriter, err error) {
	var derr *codec.DecodeError
	switch {
	case errors.Is(err, backup.ErrNotJSON):
		writeJSON(w, http.StatusUnsupportedMediaType, httpError{Error: err.Error()})
	case errors.Is(err, backup.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, httpError{Error: err.Error()})
	case errors.As(err, &derr):
		writeJSON(w, http.StatusBadRequest, httpError{Error: derr.Error(), Details: derr.Failures})
	case errors.Is(err, codec.ErrNotArray), errors.Is(err, codec.ErrMalformed), errors.Is(err, project.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, httpError{Error: err.Error()})
	default:
		s.logger.Error("import failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, httpError{Error: err.Error()})
	}
}

// observe records request duration per route pattern.
func observe(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			duration := time.Since(start)
			metrics.RecordHTTPRequestDuration(r.Method, route, fmt.Sprint(status), duration)
			logger.Debug("http request", "method", r.Method, "route", route, "status", status, "duration", duration)
		})
	}
}
