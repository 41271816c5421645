package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	clinicserver "github.com/ignasiusberneo/clinic-admin/go"
	"github.com/ignasiusberneo/clinic-admin/internal/app/seed"
	identityports "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
	schedulerealtime "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/realtime"
	scheduleworkflows "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/workflows"
	scheduleports "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/migrations"
	platformobservability "github.com/ignasiusberneo/clinic-admin/internal/platform/observability"
	platformpostgres "github.com/ignasiusberneo/clinic-admin/internal/platform/postgres"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/ratelimit"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/realtime"
	platformredis "github.com/ignasiusberneo/clinic-admin/internal/platform/redis"
	platformtemporal "github.com/ignasiusberneo/clinic-admin/internal/platform/temporal"
)

const serviceName = "clinic-admin-api"

// Run boots the clinic admin HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	LoadDotEnv(nil)
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	obsConfig, err := platformobservability.ConfigFromEnv(serviceName)
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, obsConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	checks := map[string]clinicserver.Pinger{}
	backends, memoryMode, cleanupDB, err := buildBackends(ctx, cfg, logger, checks)
	if err != nil {
		return err
	}
	defer cleanupDB()

	redisClient, cleanupRedis := platformredis.Connect(ctx, platformredis.Config{
		Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB,
	}, logger)
	defer cleanupRedis()
	if redisClient != nil {
		backends = backends.WithCatalogCache(redisClient, logger)
		checks["redis"] = clinicserver.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := realtime.NewHub(logger)
	go hub.Run(hubCtx)

	services := NewServices(backends, ServiceOptions{
		Instruments:     instruments,
		SessionTTL:      cfg.SessionTTL,
		DefaultTimezone: cfg.DefaultTimezone,
		Notifier:        schedulerealtime.NewNotifier(hub, logger),
	})

	if memoryMode && cfg.AdminPassword != "" {
		if _, err := seed.Run(ctx, services.SeedTargets(), seed.Options{
			AdminUsername: cfg.AdminUsername,
			AdminPassword: cfg.AdminPassword,
			Timezone:      cfg.DefaultTimezone,
		}, logger); err != nil {
			return fmt.Errorf("seed in-memory store: %w", err)
		}
	}

	var workflows scheduleports.WorkflowOrchestrator = scheduleworkflows.NewInlineScheduleWorkflows(services.Schedules)
	temporalClient, err := platformtemporal.Dial(platformtemporal.Config{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
	}, instruments.Tracer("temporal-client"), logger)
	if err != nil {
		logger.Warn("Temporal workflows unavailable, generating schedules inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		workflows = scheduleworkflows.NewTemporalScheduleWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	if cfg.SessionPurgeIntervalMinute > 0 {
		go purgeSessions(ctx, services.Identity, time.Duration(cfg.SessionPurgeIntervalMinute)*time.Minute, logger)
	}

	loginLimiter, err := ratelimit.New(cfg.LoginRateLimit)
	if err != nil {
		return fmt.Errorf("LOGIN_RATE_LIMIT: %w", err)
	}

	handlers := NewHandlers(services, HandlerOptions{
		Workflows: workflows,
		Hub:       hub,
		Cookie:    clinicserver.CookieOptions{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain},
		Checks:    checks,
	})
	router := clinicserver.NewRouter(handlers, clinicserver.RouterOptions{
		Authenticator: services.Identity,
		LoginLimiter:  ratelimit.Middleware(loginLimiter, clinicserver.TooManyRequests),
		Middleware:    []gin.HandlerFunc{otelgin.Middleware(serviceName)},
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("clinic admin API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("clinic admin API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down clinic admin API")
	return server.Shutdown(shutdownCtx)
}

// buildBackends prefers Postgres and falls back to the in-memory store when
// POSTGRES_DSN is unset or unreachable.
func buildBackends(ctx context.Context, cfg Config, logger *slog.Logger, checks map[string]clinicserver.Pinger) (Backends, bool, func(), error) {
	db, cleanup := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	if db == nil {
		return MemoryBackends(memdb.New()), true, cleanup, nil
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		cleanup()
		return Backends{}, false, func() {}, err
	}
	checks["postgres"] = clinicserver.PingFunc(func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	logger.Info("repositories configured with postgres")
	return PostgresBackends(db), false, cleanup, nil
}

func purgeSessions(ctx context.Context, identity identityports.Service, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := identity.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Error("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions purged", slog.Int64("removed", removed))
			}
		}
	}
}
