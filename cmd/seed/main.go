package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/tripplanner/internal/adapters/catalogfile"
	"github.com/samirrijal/tripplanner/internal/adapters/postgres"
	"github.com/samirrijal/tripplanner/internal/adapters/valkey"
	"github.com/samirrijal/tripplanner/internal/core/ports"
	"github.com/samirrijal/tripplanner/internal/core/usecases"
	"github.com/samirrijal/tripplanner/internal/pkg/config"
	"github.com/samirrijal/tripplanner/internal/pkg/logging"
)

// seed loads a location catalog file into Postgres.
//
//	seed [catalog.json]
func main() {
	cfg, err := config.Load("tripplanner-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(logging.LevelFromEnv(), "text")

	path := cfg.Catalog.SeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	start := time.Now()
	locs, err := catalogfile.ReadFile(path)
	if err != nil {
		log.Fatalf("read catalog %s: %v", path, err)
	}
	logger.Info("catalog parsed", "file", path, "locations", len(locs))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Ingest through the service so cached catalog reads are invalidated.
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "tripplanner"); err != nil {
		slog.Warn("valkey unavailable, skipping cache invalidation", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}
	svc := usecases.NewLocationService(postgres.NewLocationRepo(db), cache, usecases.LocationOptions{})

	if err := svc.Ingest(ctx, locs); err != nil {
		log.Fatalf("ingest: %v", err)
	}

	counts := map[string]int{}
	for _, l := range locs {
		counts[l.Type]++
	}
	logger.Info("catalog seeded", "locations", len(locs), "by_type", counts, "elapsed", time.Since(start).Round(time.Millisecond))
}
