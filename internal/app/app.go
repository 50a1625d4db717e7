// Package app wires configuration into a ready contacts service. The HTTP
// server and the CLI share it so both pick the backing store the same way.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"addressbook/internal/contacts/events"
	"addressbook/internal/contacts/gateway"
	contactmetrics "addressbook/internal/contacts/metrics"
	"addressbook/internal/contacts/models"
	"addressbook/internal/contacts/service"
	"addressbook/internal/platform/config"
	"addressbook/internal/platform/database"
	"addressbook/internal/platform/redis"
	"addressbook/pkg/platform/circuit"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type closableGateway interface {
	service.Gateway
	Close() error
}

// App holds the contacts service and the resources behind it.
type App struct {
	Contacts *service.Service
	Checks   map[string]Check

	closers []func() error
}

// Build opens the configured gateway, attaches the optional Kafka publisher
// and loads the directory. reg may be nil when metrics are not exported.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (_ *App, err error) {
	a := &App{Checks: map[string]Check{}}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	phoneRule, err := models.PhoneRuleByName(cfg.PhoneRule)
	if err != nil {
		return nil, err
	}

	gw, err := a.openGateway(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithValidator(models.Validator{Phone: phoneRule}),
	}
	if reg != nil {
		opts = append(opts, service.WithMetrics(contactmetrics.New(reg)))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ClientID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { publisher.Close(); return nil })
		if err := publisher.EnsureTopic(ctx); err != nil {
			logger.WarnContext(ctx, "could not ensure kafka topic",
				"topic", cfg.Kafka.Topic,
				"error", err.Error(),
			)
		}
		a.Checks["kafka"] = publisher.Ping
		breaker := circuit.New("kafka", circuit.WithFailureThreshold(3), circuit.WithCooldown(30*time.Second))
		opts = append(opts, service.WithPublisher(events.NewGuardedPublisher(publisher, breaker, logger)))
	}

	a.Contacts = service.New(gw, opts...)
	count, err := a.Contacts.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	logger.InfoContext(ctx, "contacts loaded",
		"driver", cfg.Database.Driver,
		"count", count,
	)
	return a, nil
}

func (a *App) openGateway(ctx context.Context, cfg config.Config, logger *slog.Logger) (closableGateway, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.WarnContext(ctx, "using in-memory gateway; contacts are lost on exit")
		return a.track(gateway.NewMemory()), nil

	case config.DriverRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.Checks["redis"] = client.Health
		return a.track(gateway.NewRedis(client.Client)), nil

	default:
		dialect, err := gateway.ParseDialect(cfg.Database.Driver)
		if err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		gw := gateway.NewSQL(db, dialect)
		a.track(gw)
		if err := gw.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate contacts schema: %w", err)
		}
		a.Checks["database"] = db.PingContext
		return gw, nil
	}
}

func (a *App) track(gw closableGateway) closableGateway {
	a.closers = append(a.closers, gw.Close)
	return gw
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
