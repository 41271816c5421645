package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/app/api"
	"github.com/ignasiusberneo/clinic-admin/internal/app/seed"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/migrations"
	platformpostgres "github.com/ignasiusberneo/clinic-admin/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.LoadDotEnv(logger)
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD must be set to seed the administrator account")
	}
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; nothing to seed")
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	services := api.NewServices(api.PostgresBackends(db), api.ServiceOptions{
		SessionTTL:      cfg.SessionTTL,
		DefaultTimezone: cfg.DefaultTimezone,
	})
	_, err = seed.Run(ctx, services.SeedTargets(), seed.Options{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		Timezone:      cfg.DefaultTimezone,
	}, logger)
	if errors.Is(err, seed.ErrAlreadySeeded) {
		logger.Info("seed skipped, accounts already exist")
		return
	}
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}
