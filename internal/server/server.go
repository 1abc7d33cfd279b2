// Package server exposes the pipeline over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aaveggupta/cli-ai-code-editor/internal/models"
	"github.com/aaveggupta/cli-ai-code-editor/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Service is the pipeline surface the server drives. *pipeline.Executor
// implements it.
type Service interface {
	Execute(ctx context.Context, userID, instruction, repoPath string) *pipeline.Result
	History(ctx context.Context, userID string) ([]models.Prompt, error)
	Details(ctx context.Context, userID, requestID string) (*pipeline.Details, error)
	Reapply(ctx context.Context, userID, requestID string) (*pipeline.Result, error)
}

type Server struct {
	svc     Service
	fs      afero.Fs
	logger  *zap.Logger
	httpSrv *http.Server
	ln      net.Listener
	addr    string
	repoMu  sync.Map // resolved repo path (string) -> *sync.Mutex
}

// New wires the routes. Metrics are served from gatherer when non-nil.
func New(svc Service, fs afero.Fs, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	s := &Server{
		svc:    svc,
		fs:     fs,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/prompts/execute", s.withUser(s.handleExecute))
	mux.HandleFunc("GET /api/prompts/history", s.withUser(s.handleHistory))
	mux.HandleFunc("GET /api/prompts/{id}", s.withUser(s.handleDetails))
	mux.HandleFunc("POST /api/prompts/{id}/reapply", s.withUser(s.handleReapply))
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.httpSrv = newHTTPServer(mux)
	return s
}

// NewMetrics serves only /metrics and /healthz, for running metrics on a
// listener separate from the API.
func NewMetrics(gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	s := &Server{logger: logger.Named("metrics")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	s.httpSrv = newHTTPServer(mux)
	return s
}

func newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Listen binds addr. Call Serve to start handling requests.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}
	s.ln = ln
	s.addr = ln.Addr().String()
	return nil
}

// Serve handles requests until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("server listening", zap.String("addr", s.addr))
	if err := s.httpSrv.Serve(s.ln); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	<-done
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) Addr() string {
	return s.addr
}

// lockRepo serializes runs against the same target tree. Callers must call
// Unlock when done.
func (s *Server) lockRepo(path string) *sync.Mutex {
	v, _ := s.repoMu.LoadOrStore(path, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}
