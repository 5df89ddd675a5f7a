// Package api serves a codebook over HTTP.
//
// Routes:
//
//	GET /api/v1/health
//	GET /api/v1/codes/{code}
//	GET /api/v1/complete?prefix=&limit=
//	GET /metrics
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP routes of s. Metrics are served from gatherer,
// which should be the registry the server's metrics were registered with.
func NewRouter(s *Server, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey, s.metrics))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))
		r.Get("/codes/{code}", s.metrics.InstrumentHandler("GET", "/api/v1/codes/{code}", s.handleCode))
		r.Get("/complete", s.metrics.InstrumentHandler("GET", "/api/v1/complete", s.handleComplete))
	})

	return r
}

// StartServer serves lookup until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, lookup Lookup, config ServerConfig) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	metrics := NewMetrics(reg)
	server := NewServer(lookup, config, metrics)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Starting wubitab lookup server on %s", addr)
		log.Printf("Metrics available at: http://%s/metrics", addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
