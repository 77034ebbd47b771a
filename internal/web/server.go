package web

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RunServer serves the metrics and health endpoints. It blocks until the
// server exits or ctx is cancelled; run in a goroutine.
func RunServer(ctx context.Context, addr string, reg *prometheus.Registry, log zerolog.Logger) {
	log = log.With().Str("component", "web").Logger()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down metrics server")
		srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		// Log the error but do not kill the whole process over metrics.
		log.Error().Err(err).Msg("metrics server exited")
	}
}
