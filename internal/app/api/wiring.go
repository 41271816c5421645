package api

import (
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	clinicserver "github.com/ignasiusberneo/clinic-admin/go"
	"github.com/ignasiusberneo/clinic-admin/internal/app/seed"
	catalogcache "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/cache"
	catalogmemory "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/memory"
	catalogpg "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/application"
	catalogports "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	identitymemory "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/memory"
	identityobs "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/observability"
	identitypg "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/persistence/postgres"
	identityapp "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/application"
	identityports "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
	mastermemory "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/adapters/memory"
	masterpg "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/adapters/persistence/postgres"
	masterapp "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/application"
	masterports "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
	ordermemory "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/adapters/memory"
	orderobs "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/adapters/observability"
	orderpg "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/application"
	orderports "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	schedulememory "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/memory"
	schedulepg "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/persistence/postgres"
	scheduleapp "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/application"
	scheduleports "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
	platformobservability "github.com/ignasiusberneo/clinic-admin/internal/platform/observability"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/realtime"
)

// Backends bundles the repositories of every bounded context.
type Backends struct {
	Master      masterports.Repositories
	Identity    identityports.Repository
	Sessions    identityports.SessionStore
	Catalog     catalogports.Repository
	Stocks      catalogports.StockRepository
	Schedules   scheduleports.Repository
	Orders      orderports.Store
	Idempotency orderports.IdempotencyStore
}

// MemoryBackends keeps every table in one in-process database so the order
// engine can reserve quota and stock inside its own transaction.
func MemoryBackends(db *memdb.DB) Backends {
	catalog := catalogmemory.NewRepository(db)
	orders := ordermemory.NewStore(db)
	return Backends{
		Master:      mastermemory.NewRepositories(db),
		Identity:    identitymemory.NewRepository(db),
		Sessions:    identitymemory.NewSessionStore(db),
		Catalog:     catalog,
		Stocks:      catalog,
		Schedules:   schedulememory.NewRepository(db),
		Orders:      orders,
		Idempotency: orders,
	}
}

// PostgresBackends serves every context from one connection pool.
func PostgresBackends(db *gorm.DB) Backends {
	catalog := catalogpg.NewRepository(db)
	orders := orderpg.NewStore(db)
	return Backends{
		Master:      masterpg.NewRepositories(db),
		Identity:    identitypg.NewRepository(db),
		Sessions:    identitypg.NewSessionStore(db),
		Catalog:     catalog,
		Stocks:      catalog,
		Schedules:   schedulepg.NewRepository(db),
		Orders:      orders,
		Idempotency: orders,
	}
}

// WithCatalogCache routes product and service reads through Redis. A nil client leaves b unchanged.
func (b Backends) WithCatalogCache(client *goredis.Client, logger *slog.Logger) Backends {
	if client == nil {
		return b
	}
	b.Catalog = catalogcache.New(b.Catalog, client, catalogcache.WithLogger(logger))
	return b
}

// ServiceOptions tunes NewServices. A nil Instruments skips the logging,
// tracing and metrics decorators.
type ServiceOptions struct {
	Instruments     *platformobservability.Instruments
	SessionTTL      time.Duration
	DefaultTimezone string
	Notifier        scheduleports.QuotaNotifier
}

// Services holds the application services behind the HTTP API.
type Services struct {
	Identity  identityports.Service
	Orders    orderports.Service
	Catalog   catalogports.Service
	Schedules scheduleports.Service
	Master    masterports.Service
}

// NewServices builds every application service on top of b.
func NewServices(b Backends, opts ServiceOptions) Services {
	var identity identityports.Service = identityapp.NewService(b.Identity, b.Sessions,
		identityapp.WithSessionTTL(opts.SessionTTL))

	orderOpts := []ordersapp.Option{ordersapp.WithIdempotencyStore(b.Idempotency)}
	if opts.Notifier != nil {
		orderOpts = append(orderOpts, ordersapp.WithQuotaNotifier(opts.Notifier))
	}
	var orders orderports.Service = ordersapp.NewService(b.Orders, b.Master.PaymentMethods, b.Master.Patients, orderOpts...)

	if in := opts.Instruments; in != nil {
		identity = identityobs.New(identity,
			identityobs.WithLogger(in.Logger),
			identityobs.WithTracer(in.Tracer("internal.identity.application")),
			identityobs.WithMeter(in.Meter("internal.identity.application")),
		)
		orders = orderobs.New(orders,
			orderobs.WithLogger(in.Logger),
			orderobs.WithTracer(in.Tracer("internal.orders.application")),
			orderobs.WithMeter(in.Meter("internal.orders.application")),
		)
	}

	schedules := scheduleapp.NewService(b.Schedules, b.Master.BusinessAreas, b.Catalog,
		scheduleapp.WithDefaultTimezone(opts.DefaultTimezone))
	return Services{
		Identity:  identity,
		Orders:    orders,
		Catalog:   catalogapp.NewService(b.Catalog, b.Stocks),
		Schedules: schedules,
		Master:    masterapp.NewService(b.Master),
	}
}

// SeedTargets exposes the services the seeder writes through.
func (s Services) SeedTargets() seed.Services {
	return seed.Services{Identity: s.Identity, Master: s.Master, Catalog: s.Catalog, Schedules: s.Schedules}
}

// HandlerOptions carries the transport collaborators of NewHandlers.
type HandlerOptions struct {
	Workflows scheduleports.WorkflowOrchestrator
	Hub       *realtime.Hub
	Cookie    clinicserver.CookieOptions
	Checks    map[string]clinicserver.Pinger
}

// NewHandlers binds the services to the HTTP handlers.
func NewHandlers(s Services, opts HandlerOptions) clinicserver.ApiHandleFunctions {
	return clinicserver.ApiHandleFunctions{
		AuthAPI:       clinicserver.NewAuthAPI(s.Identity, opts.Cookie),
		OrderAPI:      clinicserver.NewOrderAPI(s.Orders),
		ScheduleAPI:   clinicserver.NewScheduleAPI(s.Schedules, opts.Workflows),
		CatalogAPI:    clinicserver.NewCatalogAPI(s.Catalog),
		MasterDataAPI: clinicserver.NewMasterDataAPI(s.Master),
		UserAPI:       clinicserver.NewUserAPI(s.Identity),
		RealtimeAPI:   clinicserver.NewRealtimeAPI(opts.Hub),
		HealthAPI:     clinicserver.NewHealthAPI(opts.Checks),
	}
}
