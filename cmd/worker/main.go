package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ignasiusberneo/clinic-admin/internal/app/api"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
	platformobservability "github.com/ignasiusberneo/clinic-admin/internal/platform/observability"
	platformpostgres "github.com/ignasiusberneo/clinic-admin/internal/platform/postgres"
	platformtemporal "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal"
	scheduleactivities "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal/activities/schedules"
	scheduleworkflows "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal/workflows/schedules"
)

func main() {
	ctx := context.Background()
	const serviceName = "clinic-admin-worker"
	api.LoadDotEnv(nil)
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	obsConfig, err := platformobservability.ConfigFromEnv(serviceName)
	if err != nil {
		log.Fatalf("invalid observability configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, obsConfig)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	defer cleanupDB()
	backends := api.MemoryBackends(memdb.New())
	if db != nil {
		backends = api.PostgresBackends(db)
	} else {
		logger.Warn("worker running on in-memory repositories, generated schedules will not reach the API")
	}
	services := api.NewServices(backends, api.ServiceOptions{
		Instruments:     instruments,
		SessionTTL:      cfg.SessionTTL,
		DefaultTimezone: cfg.DefaultTimezone,
	})
	activities := scheduleactivities.NewActivities(services.Schedules)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Config{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	}, instruments.Tracer("temporal-worker"), logger)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, scheduleworkflows.GenerationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(scheduleworkflows.GenerationWorkflow, workflow.RegisterOptions{Name: scheduleworkflows.GenerationWorkflowName})
	w.RegisterActivityWithOptions(activities.GenerateSchedules, activity.RegisterOptions{Name: scheduleactivities.GenerateSchedulesActivityName})

	logger.Info("worker listening", slog.String("taskQueue", scheduleworkflows.GenerationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
