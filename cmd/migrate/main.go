package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/samirrijal/tripplanner/internal/adapters/postgres"
	"github.com/samirrijal/tripplanner/internal/pkg/config"
	"github.com/samirrijal/tripplanner/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up>")
	}

	cfg, err := config.Load("tripplanner-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(logging.LevelFromEnv(), "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		applied, err := db.Migrate(ctx, cfg.Catalog.MigrationsDir)
		for _, f := range applied {
			fmt.Printf("OK  %s\n", f)
		}
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("all migrations applied", "count", len(applied), "dir", cfg.Catalog.MigrationsDir)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
