package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalogmemory "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	mastermemory "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/adapters/memory"
	masterdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/memory"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
)

type fixture struct {
	svc     *Service
	areaID  int64
	product catalogdomain.Product
	good    catalogdomain.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := memdb.New()
	master := mastermemory.NewRepositories(db)
	catalog := catalogmemory.NewRepository(db)

	area, err := master.BusinessAreas.Save(ctx, &masterdomain.BusinessArea{Name: "Klinik Kemang", Timezone: "Asia/Jakarta", IsActive: true})
	require.NoError(t, err)
	product, err := catalog.SaveProduct(ctx, &catalogdomain.Product{BusinessAreaID: area.ID, Name: "Fisioterapi", Type: catalogdomain.ProductTypeService, IsActive: true})
	require.NoError(t, err)
	good, err := catalog.SaveProduct(ctx, &catalogdomain.Product{BusinessAreaID: area.ID, Name: "Vitamin", Type: catalogdomain.ProductTypeGood, IsActive: true})
	require.NoError(t, err)

	return fixture{
		svc:     NewService(memory.NewRepository(db), master.BusinessAreas, catalog),
		areaID:  area.ID,
		product: *product,
		good:    *good,
	}
}

func (f fixture) template(t *testing.T, start, end string, quota int64) *domain.Template {
	t.Helper()
	s, err := domain.ParseTimeOfDay(start)
	require.NoError(t, err)
	e, err := domain.ParseTimeOfDay(end)
	require.NoError(t, err)
	tpl, err := f.svc.CreateTemplate(context.Background(), &domain.Template{
		ProductID: f.product.ID, BusinessAreaID: f.areaID, StartTime: s, EndTime: e, MaxQuota: quota,
	})
	require.NoError(t, err)
	return tpl
}

func TestCreateTemplate_RejectsGoods(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTemplate(context.Background(), &domain.Template{
		ProductID: f.good.ID, BusinessAreaID: f.areaID,
		StartTime: domain.TimeOfDay{Hour: 9}, EndTime: domain.TimeOfDay{Hour: 10}, MaxQuota: 1,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ErrNotBookable)
}

func TestCreateTemplate_UnknownArea(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTemplate(context.Background(), &domain.Template{
		ProductID: f.product.ID, BusinessAreaID: 999,
		StartTime: domain.TimeOfDay{Hour: 9}, EndTime: domain.TimeOfDay{Hour: 10}, MaxQuota: 1,
	})
	require.ErrorIs(t, err, ErrUnknownReference)
}

func TestGenerateSchedules_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.template(t, "09:00", "10:00", 3)
	f.template(t, "13:00", "14:00", 2)

	input := ports.GenerateInput{BusinessAreaID: f.areaID, ProductID: f.product.ID, Date: "2024-03-01"}
	first, err := f.svc.GenerateSchedules(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)
	require.Equal(t, 0, first.Skipped)
	require.Len(t, first.Schedules, 2)
	require.Equal(t, time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC), first.Schedules[0].StartTime)
	require.EqualValues(t, 3, first.Schedules[0].RemainingQuota)

	second, err := f.svc.GenerateSchedules(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 0, second.Created)
	require.Equal(t, 2, second.Skipped)
	require.Len(t, second.Schedules, 2)
}

func TestListSchedules_UsesLocalDayBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.template(t, "06:00", "07:00", 1)
	f.template(t, "23:30", "00:30", 1)

	_, err := f.svc.GenerateSchedules(ctx, ports.GenerateInput{BusinessAreaID: f.areaID, ProductID: f.product.ID, Date: "2024-03-01"})
	require.NoError(t, err)
	_, err = f.svc.GenerateSchedules(ctx, ports.GenerateInput{BusinessAreaID: f.areaID, ProductID: f.product.ID, Date: "2024-03-02"})
	require.NoError(t, err)

	day, err := f.svc.ListSchedules(ctx, ports.ListInput{BusinessAreaID: f.areaID, ProductID: f.product.ID, Date: "2024-03-02"})
	require.NoError(t, err)
	require.Len(t, day, 2)
	for _, s := range day {
		local := s.StartTime.In(time.FixedZone("WIB", 7*3600))
		require.Equal(t, 2, local.Day())
	}

	utcDay, err := f.svc.ListSchedules(ctx, ports.ListInput{BusinessAreaID: f.areaID, ProductID: f.product.ID, Date: "2024-03-02", Timezone: "UTC"})
	require.NoError(t, err)
	require.Len(t, utcDay, 1)
	require.Equal(t, time.Date(2024, 3, 2, 16, 30, 0, 0, time.UTC), utcDay[0].StartTime)
}

func TestListSchedules_FallsBackToAreaTimezone(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	master := mastermemory.NewRepositories(db)
	catalog := catalogmemory.NewRepository(db)
	area, err := master.BusinessAreas.Save(ctx, &masterdomain.BusinessArea{Name: "Klinik Denpasar", Timezone: "Asia/Makassar", IsActive: true})
	require.NoError(t, err)
	product, err := catalog.SaveProduct(ctx, &catalogdomain.Product{BusinessAreaID: area.ID, Name: "Terapi Oksigen", Type: catalogdomain.ProductTypeService, IsActive: true})
	require.NoError(t, err)
	svc := NewService(memory.NewRepository(db), master.BusinessAreas, catalog)

	_, err = svc.CreateTemplate(ctx, &domain.Template{
		ProductID: product.ID, BusinessAreaID: area.ID,
		StartTime: domain.TimeOfDay{Minute: 30}, EndTime: domain.TimeOfDay{Hour: 1}, MaxQuota: 2,
	})
	require.NoError(t, err)

	generated, err := svc.GenerateSchedules(ctx, ports.GenerateInput{BusinessAreaID: area.ID, ProductID: product.ID, Date: "2024-03-01"})
	require.NoError(t, err)
	require.Equal(t, 1, generated.Created)
	require.Equal(t, time.Date(2024, 2, 29, 16, 30, 0, 0, time.UTC), generated.Schedules[0].StartTime)

	day, err := svc.ListSchedules(ctx, ports.ListInput{BusinessAreaID: area.ID, ProductID: product.ID, Date: "2024-03-01"})
	require.NoError(t, err)
	require.Len(t, day, 1)
	require.Equal(t, generated.Schedules[0].ID, day[0].ID)

	_, err = svc.ListSchedules(ctx, ports.ListInput{BusinessAreaID: 999, ProductID: product.ID, Date: "2024-03-01"})
	require.ErrorIs(t, err, ErrUnknownReference)
}

func TestListSchedules_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListSchedules(ctx, ports.ListInput{BusinessAreaID: f.areaID, ProductID: f.product.ID, Date: "2024/03/02"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ListSchedules(ctx, ports.ListInput{BusinessAreaID: f.areaID, ProductID: f.product.ID, Date: "2024-03-02", Timezone: "Nowhere/City"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ListSchedules(ctx, ports.ListInput{ProductID: f.product.ID, Date: "2024-03-02"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetSchedule_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetSchedule(context.Background(), 12345)
	require.ErrorIs(t, err, ports.ErrNotFound)
}
