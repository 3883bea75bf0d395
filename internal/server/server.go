// Package server provides the HTTP status surface for pinchctl.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/pinchctl/internal/app"
	"github.com/ayusman/pinchctl/internal/screenshot"
	"github.com/ayusman/pinchctl/internal/server/api"
	"github.com/ayusman/pinchctl/internal/store"
	"github.com/ayusman/pinchctl/pkg/logger"
	"github.com/ayusman/pinchctl/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FrameSource yields encoded frames for the MJPEG stream.
type FrameSource interface {
	Subscribe() (frames <-chan []byte, cancel func())
}

// Config holds the server configuration. Nil fields disable their routes.
type Config struct {
	Controller api.Controller
	Frames     FrameSource
	Store      *store.Store
	Capturer   *screenshot.Capturer
	// StatusInterval is the websocket push period.
	StatusInterval time.Duration
	Log            logger.Logger
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    logger.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.StatusInterval <= 0 {
		config.StatusInterval = 200 * time.Millisecond
	}
	log := config.Log
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    log.Named("server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	if s.config.Controller != nil {
		status := api.NewStatusHandler(s.config.Controller)
		s.mux.Handle("/api/status", status)
		s.mux.Handle("/api/pause", status)
		s.mux.Handle("/api/screenshots", api.NewScreenshotsHandler(s.config.Controller, s.config.Store, s.config.Capturer))
		s.mux.Handle("/api/ws", NewStatusSocket(s.config.Controller, s.config.StatusInterval, s.log))
	}

	if s.config.Store != nil {
		s.mux.Handle("/api/adjustments", api.NewAdjustmentsHandler(s.config.Store))
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", logger.String("addr", addr))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info(ctx, "http server stopped")
	return nil
}

var _ api.Controller = (*app.App)(nil)
var _ FrameSource = (*app.FrameHub)(nil)
