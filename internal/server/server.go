// Package server exposes the pod lifecycle engine over HTTP: a JSON API,
// a server-sent event stream, and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comfyrun/comfyrun/internal/events"
	"github.com/comfyrun/comfyrun/internal/gpu"
	"github.com/comfyrun/comfyrun/internal/pod"
)

// Options configures the HTTP server.
type Options struct {
	// Addr is the host:port to bind.
	Addr string
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
	// KeepaliveInterval is the SSE keepalive cadence.
	KeepaliveInterval time.Duration
}

// Server wires the manager, event hub and GPU catalog into HTTP handlers.
type Server struct {
	manager *pod.Manager
	hub     *events.Hub
	catalog *gpu.Catalog
	log     logr.Logger
	opts    Options

	version string
}

// New builds a server. Version is reported by the health endpoint.
func New(manager *pod.Manager, hub *events.Hub, catalog *gpu.Catalog, log logr.Logger, version string, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = 30 * time.Second
	}
	return &Server{
		manager: manager,
		hub:     hub,
		catalog: catalog,
		log:     log.WithName("http"),
		opts:    opts,
		version: version,
	}
}

// Routes assembles the full handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/gpus", s.handleListGPUs)

	mux.HandleFunc("GET /api/pods", s.handleListPods)
	mux.HandleFunc("POST /api/pods", s.handleCreatePod)
	mux.HandleFunc("GET /api/pods/{id}", s.handleGetPod)
	mux.HandleFunc("DELETE /api/pods/{id}", s.handleTerminatePod)
	mux.HandleFunc("POST /api/pods/{id}/resume", s.handleResumePod)
	mux.HandleFunc("GET /api/pods/{id}/logs", s.handlePodLogs)

	mux.HandleFunc("GET /api/monitoring/cost/summary", s.handleCostSummary)
	mux.HandleFunc("GET /api/monitoring/cost/pod/{id}", s.handleCostBreakdown)
	mux.HandleFunc("POST /api/monitoring/cost/estimate", s.handleCostEstimate)

	mux.HandleFunc("GET /api/stream/events", s.handleEventStream)

	mux.Handle("GET /metrics", promhttp.Handler())

	return s.withCORS(s.withLogging(mux))
}

// Start runs the HTTP server until the context is canceled, then shuts it
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return srv.Close()
	}
	return nil
}
