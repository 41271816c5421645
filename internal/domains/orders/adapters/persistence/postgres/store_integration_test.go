//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogpg "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	orderpg "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/adapters/persistence/postgres"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/application"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	schedulepg "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/persistence/postgres"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("clinic_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

type fixture struct {
	svc       *application.Service
	catalog   *catalogpg.Repository
	schedules *schedulepg.Repository
	gel       catalogdomain.Product
	service   catalogdomain.Service
	slot      scheduledomain.Schedule
}

func newFixture(t *testing.T, db *gorm.DB, quota int64) fixture {
	t.Helper()
	ctx := context.Background()
	catalog := catalogpg.NewRepository(db)
	schedules := schedulepg.NewRepository(db)

	therapy, err := catalog.SaveProduct(ctx, &catalogdomain.Product{
		BusinessAreaID: 1, Name: "Terapi", Type: catalogdomain.ProductTypeService,
		Tariff: 100000, SmallUnitTariff: 100000, UnitConversion: 1, IsActive: true,
	})
	require.NoError(t, err)
	gel, err := catalog.SaveProduct(ctx, &catalogdomain.Product{
		BusinessAreaID: 1, Name: "Gel", Type: catalogdomain.ProductTypeGood,
		Tariff: 50000, SmallUnitTariff: 5000, UnitConversion: 10, IsActive: true,
	})
	require.NoError(t, err)
	_, err = catalog.AdjustStock(ctx, gel.Key(), 100)
	require.NoError(t, err)
	service, err := catalog.SaveService(ctx, &catalogdomain.Service{
		Name: "Paket", Price: 100000, IsActive: true,
		Products: []catalogdomain.ServiceProduct{
			{ProductID: therapy.ID, ProductBusinessAreaID: 1, Quantity: 1, UnitType: catalogdomain.UnitLarge},
			{ProductID: gel.ID, ProductBusinessAreaID: 1, Quantity: 1, UnitType: catalogdomain.UnitSmall},
		},
	})
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)
	created, err := schedules.InsertSchedules(ctx, []scheduledomain.Schedule{{
		ProductID: therapy.ID, BusinessAreaID: 1, StartTime: start, EndTime: start.Add(time.Hour),
		MaxQuota: quota, RemainingQuota: quota,
	}})
	require.NoError(t, err)

	store := orderpg.NewStore(db)
	return fixture{
		svc:       application.NewService(store, nil, nil, application.WithIdempotencyStore(store)),
		catalog:   catalog,
		schedules: schedules,
		gel:       *gel,
		service:   *service,
		slot:      created[0],
	}
}

func TestStore_CreatePayCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	f := newFixture(t, db, 3)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, ports.CreateOrderInput{BusinessAreaID: 1, ServiceID: f.service.ID, ScheduleID: f.slot.ID, Quantity: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 200000, order.TotalPrice)
	assert.EqualValues(t, 20000, order.DP)

	fetched, err := f.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 2)
	require.NotNil(t, fetched.Items[0].Schedule)
	assert.EqualValues(t, 1, fetched.Items[0].Schedule.RemainingQuota)

	paid, err := f.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: 1, Amount: 20000})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyPaid, paid.Status)
	require.Len(t, paid.Payments, 1)
	assert.Equal(t, domain.PaymentDown, paid.Payments[0].Type)

	cancelled, err := f.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	slot, err := f.schedules.GetSchedule(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, slot.RemainingQuota)
	stock, err := f.catalog.GetStock(ctx, f.gel.Key())
	require.NoError(t, err)
	assert.EqualValues(t, 100, stock.Quantity)
}

func TestStore_IdempotencyKeyReplays(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	f := newFixture(t, db, 3)
	ctx := context.Background()
	input := ports.CreateOrderInput{BusinessAreaID: 1, ServiceID: f.service.ID, ScheduleID: f.slot.ID, Quantity: 1, IdempotencyKey: "abc"}

	first, err := f.svc.CreateOrder(ctx, input)
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	slot, err := f.schedules.GetSchedule(ctx, f.slot.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, slot.RemainingQuota)
}

func TestStore_ConcurrentBookingsOnLastSlot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	f := newFixture(t, db, 1)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		taken     int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
				BusinessAreaID: 1, ServiceID: f.service.ID, ScheduleID: f.slot.ID, Quantity: 1,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, application.ErrSlotTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, taken)
	slot, err := f.schedules.GetSchedule(context.Background(), f.slot.ID)
	require.NoError(t, err)
	assert.Zero(t, slot.RemainingQuota)
}
