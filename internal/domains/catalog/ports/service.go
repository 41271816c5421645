package ports

import (
	"context"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
)

// Service exposes catalog and stock use cases.
type Service interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, key domain.ProductKey, product *domain.Product) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, key domain.ProductKey) error
	GetProduct(ctx context.Context, key domain.ProductKey) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	CreateService(ctx context.Context, service *domain.Service) (*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	ListServices(ctx context.Context, includeInactive bool) ([]domain.Service, error)

	GetStock(ctx context.Context, key domain.ProductKey) (*domain.Stock, error)
	ListStock(ctx context.Context, businessAreaID int64) ([]domain.Stock, error)
	AdjustStock(ctx context.Context, key domain.ProductKey, delta int64) (*domain.Stock, error)
}
