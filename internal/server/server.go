package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// Server serves the built output tree plus the preview API endpoints. Each
// request only reads the already-finalized output tree, so concurrent
// requests need no synchronization.
type Server struct {
	cfg      *config.Config
	store    history.Store
	registry *prom.Registry
	recorder metrics.Recorder

	httpServer *http.Server
}

// Option customizes a Server.
type Option func(*Server)

// WithHistory exposes the build history store at /api/builds.
func WithHistory(store history.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithMetrics mounts /metrics for registry and counts requests through
// recorder.
func WithMetrics(registry *prom.Registry, recorder metrics.Recorder) Option {
	return func(s *Server) {
		s.registry = registry
		s.recorder = recorder
	}
}

// New creates a preview server for cfg's output tree.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the full request mux: site routing at /, health, build
// history, and optionally the metrics endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/builds", s.handleBuilds)
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}
	mux.HandleFunc("/", s.handleSite)
	return s.withRequestLogging(mux)
}

// ListenAndServe binds the configured port and serves until ctx is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	slog.Info("Preview server listening",
		logfields.Addr("http://localhost"+addr),
		logfields.Dir(s.cfg.OutputDir()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		slog.Info("Preview server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleSite resolves the request against the output tree. A failed lookup
// degrades to 404; the server never errors on a missing file.
func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, ok := Resolve(s.cfg.OutputDir(), s.cfg.Server.IndexName, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := os.Open(res.Path)
	if err != nil {
		// Resolved a moment ago but unreadable now; a rebuild may have
		// removed it mid-request.
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	if res.HTML {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if _, err := io.Copy(w, f); err != nil {
		slog.Debug("Response write aborted", logfields.Path(res.Path), logfields.Error(err))
	}
}

// withRequestLogging logs each request and feeds the status counter.
func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.recorder.IncHTTPRequest(sw.status)
		slog.Debug("Request served",
			logfields.Method(r.Method),
			logfields.URL(r.URL.Path),
			logfields.Status(sw.status))
	})
}

// statusWriter captures the response status for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}
