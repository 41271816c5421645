package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/app/api"
	identitypg "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/persistence/postgres"
	identityapp "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/application"
	platformpostgres "github.com/ignasiusberneo/clinic-admin/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.LoadDotEnv(logger)
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	service := identityapp.NewService(identitypg.NewRepository(db), identitypg.NewSessionStore(db))
	removed, err := service.PurgeExpiredSessions(ctx)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("removed", removed))
}
