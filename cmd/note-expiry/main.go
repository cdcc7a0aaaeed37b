// Command note-expiry runs the scheduled sweep that flips ACTIVE unit
// notes with an elapsed expiry to EXPIRED. It exits non-zero on a fatal
// error so the scheduler retries the run.
package main

import (
	"context"
	"os"
	"time"

	"mhregistry/internal/platform/config"
	"mhregistry/internal/platform/logger"
	"mhregistry/internal/platform/postgres"
	"mhregistry/internal/registry/expiry"
	"mhregistry/internal/registry/store/registration"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	runner := expiry.NewRunner(registration.NewPostgres(db), log)
	if _, err := runner.Run(ctx, time.Now().UTC()); err != nil {
		log.Error("expiry sweep failed", "error", err)
		os.Exit(1)
	}
}
