// Package ui serves the rendered lesson report over HTTP.
package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gocausal/app"
	"gocausal/internal/errors"
	"gocausal/internal/logger"
	"gocausal/internal/render"
)

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Causal Inference Lessons</title>
<style>
body { font-family: Georgia, serif; max-width: 54rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #bbb; padding: 0.3rem 0.7rem; text-align: left; }
th { background: #f0f0f0; }
code { background: #f4f4f4; padding: 0 0.2rem; }
h1, h2, h3 { font-family: Helvetica, sans-serif; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Server computes lesson runs on demand and serves them as HTML,
// markdown or JSON. Results are cached by seed, so repeated views of
// the same seed reuse one run.
type Server struct {
	svc    *app.Service
	log    logger.Logger
	router *chi.Mux

	mu    sync.Mutex
	cache map[int64]*app.RunResult
}

// NewServer creates a report server around a lesson runner.
func NewServer(svc *app.Service, log logger.Logger) *Server {
	if log == nil {
		log = &logger.NopLogger{}
	}
	s := &Server{
		svc:   svc,
		log:   log,
		cache: make(map[int64]*app.RunResult),
	}
	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/report.md", s.handleReportMarkdown)
	s.router.Get("/api/run", s.handleRunJSON)
	s.router.Get("/healthz", s.handleHealth)
}

// Routes exposes the router for embedding and tests.
func (s *Server) Routes() http.Handler { return s.router }

// Start serves on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Infof("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// runForRequest resolves the seed from the query string, falling back
// to the configured one, and returns the cached run for it.
func (s *Server) runForRequest(r *http.Request) (*app.RunResult, error) {
	seed := s.svc.Seed()
	if raw := r.URL.Query().Get("seed"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("seed %q is not an integer", raw))
		}
		seed = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.cache[seed]; ok {
		return res, nil
	}
	res, err := s.svc.RunWithSeed(r.Context(), seed)
	if err != nil {
		return nil, err
	}
	s.cache[seed] = res
	return res, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	res, err := s.runForRequest(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.ToHTML(render.Markdown(res), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageShell, body)
}

func (s *Server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	res, err := s.runForRequest(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write(render.Markdown(res))
}

func (s *Server) handleRunJSON(w http.ResponseWriter, r *http.Request) {
	res, err := s.runForRequest(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.log.Errorf("encoding run: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": s.svc.CodeVersion(),
	})
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.GetCode(err) == errors.CodeInvalidInput {
		status = http.StatusBadRequest
	}
	s.log.Errorf("request failed: %v", err)
	http.Error(w, err.Error(), status)
}
