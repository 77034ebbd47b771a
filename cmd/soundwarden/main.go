package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"soundwarden/internal/config"
	"soundwarden/internal/discord"
	"soundwarden/internal/logging"
	"soundwarden/internal/music"
	"soundwarden/internal/storage"
	"soundwarden/internal/version"
	"soundwarden/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "")
		fallback.Fatal().Err(err).Msg("configuration error")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", version.String()).Msg("starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open storage")
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := music.NewMetrics(reg)

	go web.RunServer(ctx, cfg.MetricsAddr, reg, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- discord.StartBot(ctx, cfg, store, metrics, log)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	}

	log.Info().Msg("exited cleanly")
}
