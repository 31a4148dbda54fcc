package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/tripplanner/internal/adapters/nats"
	"github.com/samirrijal/tripplanner/internal/adapters/postgres"
	"github.com/samirrijal/tripplanner/internal/adapters/valkey"
	"github.com/samirrijal/tripplanner/internal/core/planner"
	"github.com/samirrijal/tripplanner/internal/core/ports"
	"github.com/samirrijal/tripplanner/internal/core/usecases"
	"github.com/samirrijal/tripplanner/internal/pkg/config"
	"github.com/samirrijal/tripplanner/internal/pkg/logging"
	"github.com/samirrijal/tripplanner/internal/pkg/telemetry"
	"github.com/samirrijal/tripplanner/internal/workflows"
)

func main() {
	cfg, err := config.Load("tripplanner-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Setup(logging.LevelFromEnv(), "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.CollectorAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "tripplanner"); err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	// Publishing is a workflow step, so the worker needs the broker.
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	locations := usecases.NewLocationService(postgres.NewLocationRepo(db), cache, usecases.LocationOptions{
		CacheTTL:        cfg.Catalog.CacheTTL,
		BreakerFailures: cfg.Catalog.BreakerFailures,
		BreakerTimeout:  time.Duration(cfg.Catalog.BreakerTimeout) * time.Second,
	})
	plan := planner.New(cfg.Planner,
		planner.WithBands(cfg.Budget.Bands),
		planner.WithObserver(usecases.NewPlannerObserver(logger)),
	)
	itineraries := usecases.NewItineraryService(locations, postgres.NewItineraryRepo(db), pub, cache, plan, cfg.Catalog.ItineraryTTL)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.GenerateItineraryWorkflow)
	w.RegisterActivity(&workflows.GenerateActivities{Itineraries: itineraries, Logger: logger})

	slog.Info("itinerary worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
