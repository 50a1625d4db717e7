package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"addressbook/internal/app"
	"addressbook/internal/contacts/handler"
	httpapi "addressbook/internal/http"
	jwttoken "addressbook/internal/jwt_token"
	"addressbook/internal/platform/config"
	"addressbook/internal/platform/httpserver"
	"addressbook/internal/platform/logger"
	"addressbook/internal/platform/metrics"
	"addressbook/internal/platform/middleware"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	application, err := app.Build(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("closing resources", "error", err.Error())
		}
	}()

	var validator middleware.JWTValidator
	if cfg.Server.JWTSigningKey != "" {
		validator = jwttoken.NewJWTServiceAdapter(
			jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, jwttoken.DefaultAudience),
		)
	} else {
		log.Warn("JWT_SIGNING_KEY not set; write endpoints are unauthenticated")
	}

	httpMetrics := metrics.New(reg)
	checks := make(map[string]httpapi.HealthCheck, len(application.Checks))
	for name, check := range application.Checks {
		checks[name] = httpapi.HealthCheck(check)
	}
	router := httpapi.NewRouter(httpapi.Options{
		Logger:   log,
		Metrics:  httpMetrics,
		Gatherer: reg,
		Checks:   checks,
	}, handler.New(application.Contacts, log, httpMetrics, validator))

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.ListenAndServe(gctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(quit)
		select {
		case sig := <-quit:
			log.Info("shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("addressbook stopped")
	return nil
}
