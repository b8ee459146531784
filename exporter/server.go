// Package exporter publishes Growatt mix readings as Prometheus metrics.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>mixwatch</title></head>
<body>
<h1>mixwatch Growatt exporter</h1>
<p>Mix device %s</p>
<p><a href="%s">Metrics</a></p>
</body>
</html>`

// Server exposes a collector over HTTP
type Server struct {
	listen      string
	metricsPath string
	collector   *Collector
	logger      zerolog.Logger
}

// NewServer creates a server for the given collector
func NewServer(listen, metricsPath string, collector *Collector, logger zerolog.Logger) *Server {
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	return &Server{
		listen:      listen,
		metricsPath: metricsPath,
		collector:   collector,
		logger:      logger,
	}
}

// Handler builds the HTTP routes: metrics, /health and an index page
func (s *Server) Handler() (http.Handler, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(s.collector); err != nil {
		return nil, fmt.Errorf("register collector: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(s.metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, indexHTML, s.collector.target.MixSerial, s.metricsPath)
	})
	return mux, nil
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.listen).Str("path", s.metricsPath).Msg("Starting exporter")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutting down exporter")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
