package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"getjobs/internal/app"
	"getjobs/internal/config"
	"getjobs/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.App.LogLevel).With("app", cfg.App.AppName, "env", cfg.App.Environment)
	defer func() {
		_ = logger.Sync()
	}()

	bootstrap, cleanup, err := app.Bootstrap(cfg, logger)
	if err != nil {
		logger.Error("failed to bootstrap app", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("cleanup error", "err", err)
		}
	}()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		logger.Error("invalid HTTP port", "err", err)
		os.Exit(1)
	}

	go bootstrap.Hub.Run()
	defer bootstrap.Hub.Close()

	if bootstrap.Scheduler != nil {
		if err := bootstrap.Scheduler.Start(); err != nil {
			logger.Error("failed to start scheduler", "err", err)
			os.Exit(1)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "err", err)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if bootstrap.Scheduler != nil {
		bootstrap.Scheduler.Stop(ctx)
	}
	if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
		logger.Warn("shutdown error", "err", err)
	}
}
