package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/shipment-support/internal/api/http"
	"github.com/spec-kit/shipment-support/internal/api/http/handlers"
	"github.com/spec-kit/shipment-support/internal/config"
	"github.com/spec-kit/shipment-support/internal/events"
	"github.com/spec-kit/shipment-support/internal/lookup"
	"github.com/spec-kit/shipment-support/internal/notify"
	"github.com/spec-kit/shipment-support/internal/observability"
	"github.com/spec-kit/shipment-support/internal/persistence"
	"github.com/spec-kit/shipment-support/internal/repository"
	"github.com/spec-kit/shipment-support/internal/service"
	"github.com/spec-kit/shipment-support/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	flagSet := pflag.NewFlagSet("shipment-support", pflag.ContinueOnError)
	cfg.BindFlags(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("failed to parse flags: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	orders, err := buildLookup(cfg, pg, redis, logger)
	if err != nil {
		logger.Fatal("failed to build order lookup", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)
	worker.StartEventMetrics(dispatcher, metrics)

	feed := notify.NewFeed(cfg.Notification.FeedSize)
	page := service.NewPageController(service.PageDependencies{
		Store:      repository.NewTicketStore(),
		Lookup:     orders,
		Notifier:   notify.Multi{feed, notify.NewLogging(logger)},
		Dispatcher: dispatcher,
		Logger:     logger,
	}, service.PageConfig{
		LookupTimeout:      cfg.Lookup.Timeout(),
		SubmitLatency:      cfg.Tickets.SubmitLatency(),
		MaxAttachmentBytes: cfg.Tickets.MaxAttachmentBytes,
		CreatedBy:          cfg.Tickets.DefaultCreatedBy,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets: handlers.NewTicketsHandler(page, feed),
		Dialogs: handlers.NewDialogsHandler(page),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func buildLookup(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis, logger *zap.Logger) (lookup.Service, error) {
	var svc lookup.Service
	switch cfg.Lookup.Source {
	case config.LookupSourcePostgres:
		if !pg.Enabled() {
			return nil, errors.New("postgres lookup source needs a database connection")
		}
		svc = repository.NewOrderRepository(pg.PoolHandle())
	default:
		dir, err := lookup.LoadDirectory(cfg.Lookup.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("load order seed: %w", err)
		}
		logger.Info("loaded order seed", zap.String("file", cfg.Lookup.SeedFile), zap.Int("orders", dir.Len()))
		svc = dir
	}
	if redis.Enabled() {
		svc = lookup.NewCached(svc, redis.Client, cfg.Lookup.CacheTTL(), logger)
	}
	return svc, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
