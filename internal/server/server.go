// Package server exposes the review UI over HTTP.
//
// The URL layout is /<action>/<base>/<target>/<object>: the diff action
// serves the HTML review page and the image action serves the composite SVG
// it embeds. Versions are resolved lazily per request, so the first hit on a
// new version pair pays the render cost and later hits reuse the artifacts.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tanakamasayuki/kicad-diff-visualizer/internal/diff"
	"github.com/tanakamasayuki/kicad-diff-visualizer/internal/project"
	"github.com/tanakamasayuki/kicad-diff-visualizer/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the review pages and composite images for one project.
type Server struct {
	orch   *diff.Orchestrator
	proj   *project.Project
	logger *log.Logger
	tmpl   *template.Template
}

// New creates a Server. A nil logger falls back to log.Default().
func New(orch *diff.Orchestrator, proj *project.Project, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		orch:   orch,
		proj:   proj,
		logger: logger,
		tmpl:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traced)

	r.Get("/", s.handleIndex)
	r.Get("/diff/{base}/{target}/{object}", s.handleDiff)
	r.Get("/image/{base}/{target}/{object}", s.handleImage)
	r.Get("/sheets", s.handleSheets)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("review server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// traced assigns each request a trace id and logs method, path and duration.
func (s *Server) traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.NewString()
		logger := s.logger.With("traceid", traceID)

		start := time.Now()
		logger.Info("request", "method", r.Method, "path", r.URL.Path)

		next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger)))

		logger.Debug("request done", "path", r.URL.Path, "duration", time.Since(start))
	})
}

type loggerKey struct{}

func withLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// requestLogger returns the per-request logger installed by the trace
// middleware, or the server's own logger outside of it.
func (s *Server) requestLogger(r *http.Request) *log.Logger {
	if logger, ok := r.Context().Value(loggerKey{}).(*log.Logger); ok {
		return logger
	}
	return s.logger
}

// writeError maps structured errors onto HTTP statuses: missing versions,
// archive entries and objects are the client's problem, everything else is
// ours.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := s.requestLogger(r)

	status := http.StatusInternalServerError
	if errors.NotFound(err) {
		status = http.StatusNotFound
	}

	if status == http.StatusNotFound {
		logger.Warn("request failed", "status", status, "err", err)
	} else {
		logger.Error("request failed", "status", status, "err", err)
	}
	http.Error(w, errors.UserMessage(err), status)
}
