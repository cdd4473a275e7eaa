// Package opsserver is the small ops HTTP surface that sits alongside a
// running customization or query-serving process: a health check, a
// snapshot of pkg/stats' counters, and a websocket feed of customization
// progress events. It is not part of the query path itself.
package opsserver

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// Config holds server configuration.
type Config struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
	CORSOrigin    string
}

// DefaultConfig returns sensible defaults for addr.
func DefaultConfig(addr string) Config {
	return Config{
		Addr:          addr,
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		MaxConcurrent: runtime.NumCPU() * 2,
		CORSOrigin:    "",
	}
}

// Server is the ops HTTP surface: health/stats handlers plus a progress
// websocket Hub.
type Server struct {
	Hub *Hub
	srv *http.Server
}

// New creates a Server with all routes and middleware wired, but does not
// start listening yet.
func New(cfg Config) *Server {
	hub := NewHub()
	mux := http.NewServeMux()

	sem := make(chan struct{}, cfg.MaxConcurrent)

	mux.HandleFunc("GET /ops/v1/health", withMiddleware(handleHealth, sem, cfg))
	mux.HandleFunc("GET /ops/v1/stats", withMiddleware(handleStats, sem, cfg))
	mux.HandleFunc("GET /ops/v1/progress", func(w http.ResponseWriter, r *http.Request) {
		hub.Subscribe(w, r)
	})

	return &Server{
		Hub: hub,
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      mux,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// ListenAndServe starts the Hub's broadcast loop and the HTTP server, and
// blocks until a shutdown signal arrives or the server fails.
func (s *Server) ListenAndServe() error {
	go s.Hub.Run()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("opsserver: listening on %s", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("opsserver: received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(ctx)
	}
}

// withMiddleware wraps a handler with security headers, CORS, a concurrency
// limiter, panic recovery, a request timeout and access logging.
func withMiddleware(handler http.HandlerFunc, sem chan struct{}, cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")

		if cfg.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		}

		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("opsserver: panic: %v", rec)
				http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
			}
		}()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		handler(w, r.WithContext(ctx))
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	}
}
