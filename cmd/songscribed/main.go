package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"songscribe/internal/config"
	"songscribe/internal/daemon"
	"songscribe/internal/dispatch"
	"songscribe/internal/library"
	"songscribe/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store := library.NewStore(cfg.Paths.RawDir, cfg.Paths.TranscribedDir, logger)
	dispatcher := dispatch.New(cfg, logger)

	d, err := daemon.New(cfg, store, dispatcher, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("songscribed shutting down")
}
