//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	schedulepg "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/persistence/postgres"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/migrations"
)

func setupSchedulePostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func TestRepository_TemplatesKeepWallClockTimes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupSchedulePostgresContainer(t)
	defer cleanup()
	repo := schedulepg.NewRepository(db)
	ctx := context.Background()

	_, err := repo.SaveTemplate(ctx, &domain.Template{
		ProductID: 7, BusinessAreaID: 1,
		StartTime: domain.TimeOfDay{Hour: 9, Minute: 30},
		EndTime:   domain.TimeOfDay{Hour: 10, Minute: 30},
		MaxQuota:  4, IsActive: true,
	})
	require.NoError(t, err)
	_, err = repo.SaveTemplate(ctx, &domain.Template{
		ProductID: 7, BusinessAreaID: 1,
		StartTime: domain.TimeOfDay{Hour: 13},
		EndTime:   domain.TimeOfDay{Hour: 14},
		MaxQuota:  2, IsActive: false,
	})
	require.NoError(t, err)

	active, err := repo.ListTemplates(ctx, ports.TemplateFilter{BusinessAreaID: 1, ProductID: 7, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.TimeOfDay{Hour: 9, Minute: 30}, active[0].StartTime)
	assert.Equal(t, domain.TimeOfDay{Hour: 10, Minute: 30}, active[0].EndTime)

	all, err := repo.ListTemplates(ctx, ports.TemplateFilter{ProductID: 7})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepository_InsertSchedulesSkipsExistingSlots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupSchedulePostgresContainer(t)
	defer cleanup()
	repo := schedulepg.NewRepository(db)
	ctx := context.Background()

	start := time.Date(2030, 1, 15, 2, 0, 0, 0, time.UTC)
	slot := domain.Schedule{
		ProductID: 7, BusinessAreaID: 1,
		StartTime: start, EndTime: start.Add(time.Hour),
		MaxQuota: 4, RemainingQuota: 4,
	}
	created, err := repo.InsertSchedules(ctx, []domain.Schedule{slot})
	require.NoError(t, err)
	require.Len(t, created, 1)

	next := slot
	next.StartTime, next.EndTime = start.Add(time.Hour), start.Add(2*time.Hour)
	created, err = repo.InsertSchedules(ctx, []domain.Schedule{slot, next})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.True(t, next.StartTime.Equal(created[0].StartTime))

	day, err := repo.ListSchedules(ctx, ports.ScheduleFilter{
		BusinessAreaID: 1, ProductID: 7,
		From: start.Add(-time.Hour), To: start.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Len(t, day, 2)
}

func TestReserveAndRelease_CompareAndSwap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupSchedulePostgresContainer(t)
	defer cleanup()
	repo := schedulepg.NewRepository(db)
	ctx := context.Background()

	start := time.Date(2030, 1, 15, 2, 0, 0, 0, time.UTC)
	created, err := repo.InsertSchedules(ctx, []domain.Schedule{{
		ProductID: 7, BusinessAreaID: 1,
		StartTime: start, EndTime: start.Add(time.Hour),
		MaxQuota: 3, RemainingQuota: 3,
	}})
	require.NoError(t, err)
	id := created[0].ID

	reserved, err := schedulepg.ReserveTx(db.WithContext(ctx), id, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, reserved.RemainingQuota)

	_, err = schedulepg.ReserveTx(db.WithContext(ctx), id, 2)
	require.ErrorIs(t, err, domain.ErrQuotaExhausted)

	_, err = schedulepg.ReleaseTx(db.WithContext(ctx), id, 3)
	require.ErrorIs(t, err, domain.ErrQuotaOverflow)

	released, err := schedulepg.ReleaseTx(db.WithContext(ctx), id, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, released.RemainingQuota)

	stored, err := repo.GetSchedule(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stored.RemainingQuota)

	_, err = repo.GetSchedule(ctx, id+100)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
