package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bankingSystem/internal/banking"
	"bankingSystem/internal/config"
	"bankingSystem/internal/httpapi"
	"bankingSystem/internal/logger"
	"bankingSystem/internal/metrics"
	"bankingSystem/repository"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	l, err := logger.New(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, Service: "bank-server"})
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("configuration loaded", zap.Stringer("config", cfg))

	store, closer, err := repository.Open(cfg.Storage)
	if err != nil {
		l.Fatal("open store", zap.Error(err))
	}
	defer func() {
		if err := closer.Close(); err != nil {
			l.Error("close store", zap.Error(err))
		}
	}()

	m := metrics.New()
	bank, err := banking.New(context.Background(), store, banking.WithLogger(l), banking.WithMetrics(m))
	if err != nil {
		l.Fatal("load accounts", zap.Error(err))
	}

	srv := httpapi.New(bank, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, m, l)
	shutdown, err := srv.Start(cfg.HTTP.Address)
	if err != nil {
		l.Fatal("start http", zap.Error(err))
	}
	l.Info("http server listening", zap.String("address", cfg.HTTP.Address))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	drain(l, 5*time.Second, shutdown, bank.Save)
}

// drain stops the HTTP server and then writes accounts one last time. Each step
// gets its own timeout so a slow shutdown cannot starve the save.
func drain(l *zap.Logger, timeout time.Duration, shutdown, save func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	if err := shutdown(ctx); err != nil {
		l.Error("shutdown", zap.Error(err))
	}
	cancel()

	ctx, cancel = context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := save(ctx); err != nil {
		l.Error("final save", zap.Error(err))
	}
}
