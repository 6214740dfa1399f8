package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mister-sp/girr-remake-sub000/internal/config"
	"github.com/Mister-sp/girr-remake-sub000/internal/relay"
	"github.com/Mister-sp/girr-remake-sub000/internal/store"
	"github.com/Mister-sp/girr-remake-sub000/internal/uploads"
	"github.com/Mister-sp/girr-remake-sub000/internal/web"
	"github.com/Mister-sp/girr-remake-sub000/internal/web/api"
)

func main() {
	configPath := flag.String("config", "girr.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data directory")
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadsDir).Msg("failed to create uploads directory")
	}

	st := store.Open(filepath.Join(cfg.DataDir, "rundown.json"), log)
	hub := relay.NewHub(log)
	transitions := api.OpenTransitions(filepath.Join(cfg.DataDir, "settings.json"), log)
	files := uploads.NewManager(cfg.UploadsDir, cfg.MaxUploadMB*1024*1024)

	srv := web.NewServer(cfg.Listen, st, hub, transitions, files, log)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}
