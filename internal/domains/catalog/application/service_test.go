package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/memory"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
)

func newTestService() *Service {
	repo := memory.NewRepository(memdb.New())
	return NewService(repo, repo)
}

func createGood(t *testing.T, svc *Service, areaID int64) *domain.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), &domain.Product{
		BusinessAreaID:  areaID,
		Name:            "Vitamin C",
		Type:            domain.ProductTypeGood,
		LargeUnit:       "box",
		SmallUnit:       "tablet",
		Tariff:          50000,
		SmallUnitTariff: 5000,
		UnitConversion:  10,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProduct_Activates(t *testing.T) {
	svc := newTestService()

	p := createGood(t, svc, 1)
	require.NotZero(t, p.ID)
	require.True(t, p.IsActive)

	got, err := svc.GetProduct(context.Background(), p.Key())
	require.NoError(t, err)
	require.Equal(t, "Vitamin C", got.Name)
}

func TestCreateProduct_InvalidType(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateProduct(context.Background(), &domain.Product{BusinessAreaID: 1, Name: "X", Type: "GADGET"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidProductType)
}

func TestCreateProduct_UnknownDefaultService(t *testing.T) {
	svc := newTestService()
	missing := int64(99)

	_, err := svc.CreateProduct(context.Background(), &domain.Product{
		BusinessAreaID: 1, Name: "Terapi", Type: domain.ProductTypeService, DefaultServiceID: &missing,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeactivateProduct_HidesFromDefaultList(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p := createGood(t, svc, 1)

	require.NoError(t, svc.DeactivateProduct(ctx, p.Key()))

	active, err := svc.ListProducts(ctx, ports.ProductFilter{BusinessAreaID: 1})
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := svc.ListProducts(ctx, ports.ProductFilter{BusinessAreaID: 1, IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.False(t, all[0].IsActive)
}

func TestCreateService_RequiresBundledProducts(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateService(context.Background(), &domain.Service{
		Name:  "Fisioterapi",
		Price: 100000,
		Products: []domain.ServiceProduct{
			{ProductID: 7, ProductBusinessAreaID: 1, Quantity: 1, UnitType: domain.UnitLarge},
		},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCreateService_StoresBundle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	good := createGood(t, svc, 1)

	created, err := svc.CreateService(ctx, &domain.Service{
		Name:  "Paket Imun",
		Price: 75000,
		Products: []domain.ServiceProduct{
			{ProductID: good.ID, ProductBusinessAreaID: 1, Quantity: 2, UnitType: "small"},
		},
	})
	require.NoError(t, err)
	require.True(t, created.IsActive)

	got, err := svc.GetService(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	require.Equal(t, domain.UnitSmall, got.Products[0].UnitType)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	good := createGood(t, svc, 1)

	stock, err := svc.AdjustStock(ctx, good.Key(), 30)
	require.NoError(t, err)
	require.EqualValues(t, 30, stock.Quantity)

	stock, err = svc.AdjustStock(ctx, good.Key(), -10)
	require.NoError(t, err)
	require.EqualValues(t, 20, stock.Quantity)

	_, err = svc.AdjustStock(ctx, good.Key(), -21)
	require.ErrorIs(t, err, ports.ErrInsufficientStock)

	current, err := svc.GetStock(ctx, good.Key())
	require.NoError(t, err)
	require.EqualValues(t, 20, current.Quantity)
}

func TestAdjustStock_RejectsServicesAndZero(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	good := createGood(t, svc, 1)
	service, err := svc.CreateProduct(ctx, &domain.Product{BusinessAreaID: 1, Name: "Konsultasi", Type: domain.ProductTypeService, Tariff: 100000})
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, service.Key(), 5)
	require.ErrorIs(t, err, ErrNotStocked)

	_, err = svc.AdjustStock(ctx, good.Key(), 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}
