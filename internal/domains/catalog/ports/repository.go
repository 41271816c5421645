package ports

import (
	"context"
	"errors"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
)

var (
	// ErrNotFound indicates the requested product, service or stock row is absent.
	ErrNotFound = errors.New("catalog record not found")
	// ErrInsufficientStock indicates a stock decrement would go below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	BusinessAreaID  int64
	Type            domain.ProductType
	IncludeInactive bool
}

// Repository persists products and services.
type Repository interface {
	SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, key domain.ProductKey) (*domain.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	SaveService(ctx context.Context, service *domain.Service) (*domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	ListServices(ctx context.Context, includeInactive bool) ([]domain.Service, error)
}

// StockRepository persists on-hand quantities.
type StockRepository interface {
	GetStock(ctx context.Context, key domain.ProductKey) (*domain.Stock, error)
	ListStock(ctx context.Context, businessAreaID int64) ([]domain.Stock, error)
	// AdjustStock adds delta (which may be negative) and returns the new row.
	// A result below zero fails with ErrInsufficientStock and changes nothing.
	AdjustStock(ctx context.Context, key domain.ProductKey, delta int64) (*domain.Stock, error)
}
