package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"lolcompiler/pkg/compiler"
	"lolcompiler/pkg/config"
	"lolcompiler/pkg/store"
)

// Server serves the compiled form of one source file. The document is
// recompiled when the source text changes; the last result is cached.
type Server struct {
	builder     *Builder
	source      string
	metricsPath string
	log         *slog.Logger
	mux         *http.ServeMux

	mu      sync.Mutex
	lastSrc string
	lastDoc string
	lastErr error
	cached  bool
}

// NewServer builds a preview server for source. metricsPath defaults to
// /metrics.
func NewServer(b *Builder, source, metricsPath string) *Server {
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if b.Metrics == nil {
		b.Metrics = NewMetrics(nil)
	}
	s := &Server{
		builder:     b,
		source:      source,
		metricsPath: metricsPath,
		log:         b.logger(),
		mux:         http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleDocument)
	s.mux.HandleFunc("GET "+config.HealthPath, s.handleHealth)
	s.mux.Handle("GET "+metricsPath, b.Metrics.Handler())
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Document returns the compiled document, compiling only when the source
// text differs from the previous request.
func (s *Server) Document() (string, error) {
	src, err := s.builder.Store.ReadSource(s.source)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached && src == s.lastSrc {
		return s.lastDoc, s.lastErr
	}

	res, err := s.builder.CompileSource(s.source, src)
	s.lastSrc, s.lastErr, s.lastDoc, s.cached = src, err, "", true
	if err == nil {
		s.lastDoc = res.Doc
	}
	return s.lastDoc, s.lastErr
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Document()
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, doc)
	case errors.Is(err, store.ErrFileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, new(*compiler.Error)):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Error("preview failed", "source", s.source, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, "ok")
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, when not nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("preview server listening", "addr", ln.Addr().String(), "source", s.source, "metrics", s.metricsPath)
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
