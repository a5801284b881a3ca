package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"healthcompanion/internal/ai"
	"healthcompanion/internal/auth"
	"healthcompanion/internal/companion"
	"healthcompanion/internal/config"
	"healthcompanion/internal/logger"
	"healthcompanion/internal/metrics"
	"healthcompanion/internal/server"
	"healthcompanion/internal/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()
	s, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	defer s.Close()

	if pg, ok := s.(*store.PostgresStore); ok &&
		strings.EqualFold(strings.TrimSpace(os.Getenv("AUTO_ENABLE_PG_STAT_STATEMENTS")), "true") {
		if _, err := pg.Pool().Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pg_stat_statements`); err != nil {
			// Managed roles often cannot create extensions.
			log.WithError(err).Warn("optional extension pg_stat_statements not enabled")
		}
	}

	passwords := auth.NewPasswordManager()
	if cfg.SeedDemoUsers {
		seeded, err := store.SeedDemoUsers(ctx, s, passwords)
		if err != nil {
			log.Fatalf("seed demo users failed: %v", err)
		}
		if seeded {
			log.WithField("users", len(store.DemoUsers)).Info("seeded demo users")
		}
	}

	m := metrics.New()
	client, provider, err := ai.New(ctx, cfg, log)
	if err != nil {
		log.Fatalf("ai client setup failed: %v", err)
	}
	if client == nil {
		log.Info("no generation backend configured, chat uses the rule responder")
	} else {
		log.WithField("provider", provider).Info("generation backend ready")
	}

	chat := companion.NewService(s, client,
		companion.WithReportLimit(cfg.ReportLimit),
		companion.WithTimeout(cfg.AITimeout()),
		companion.WithLogger(log),
		companion.WithMetrics(m),
		companion.WithProvider(provider),
	)

	app := server.New(cfg, server.Deps{
		Store:     s,
		Chat:      chat,
		Passwords: passwords,
		Tokens:    auth.NewTokenIssuer(cfg),
		Metrics:   m,
		Logger:    log,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.AppPort, "env": cfg.AppEnv}).Info("health companion api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
