package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"inkwell/internal/broadcast"
	"inkwell/internal/config"
	"inkwell/internal/dispatcher"
	"inkwell/internal/logging"
	"inkwell/internal/registry"
	"inkwell/internal/transport/ws"
)

var logger = logging.Logger("server")

// Server wires the document registry, broadcaster, dispatcher and
// websocket transport into one running process.
type Server struct {
	config      config.Config
	registry    *registry.Registry
	broadcaster broadcast.Broadcaster
	dispatcher  *dispatcher.Dispatcher
	httpServer  *http.Server
	startTime   time.Time
}

// NewServer constructs a Server from cfg. It does not start listening.
func NewServer(cfg config.Config) (*Server, error) {
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("server: set log level: %w", err)
	}

	reg := registry.New()

	var bc broadcast.Broadcaster
	if cfg.Broadcaster == "redis" {
		bc = broadcast.NewRedis(goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr}))
	} else {
		bc = broadcast.NewMemory()
	}

	d, err := dispatcher.New(reg, bc)
	if err != nil {
		return nil, fmt.Errorf("server: create dispatcher: %w", err)
	}

	s := &Server{
		config:      cfg,
		registry:    reg,
		broadcaster: bc,
		dispatcher:  d,
		startTime:   time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/ws", ws.NewHandler(d))
	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	return s, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

// Start runs the HTTP server until a SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Start() error {
	go func() {
		logger.Infow("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorw("server forced to shut down", "error", err)
	}

	s.Close()
	return nil
}

// Close releases server-owned resources. Idempotent enough for Start's
// shutdown path; it does not need to be called again by callers of Start.
func (s *Server) Close() {
	s.registry.Close()
	if closer, ok := s.broadcaster.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warnw("broadcaster close error", "error", err)
		}
	}
	logger.Info("server stopped")
}
