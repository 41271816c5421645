package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
)

// Service orchestrates catalog and stock use cases.
type Service struct {
	repo   ports.Repository
	stocks ports.StockRepository
}

func NewService(repo ports.Repository, stocks ports.StockRepository) *Service {
	return &Service{repo: repo, stocks: stocks}
}

func (s *Service) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	product.IsActive = true
	if err := product.Validate(); err != nil {
		return nil, mapError(err)
	}
	if err := s.checkDefaultService(ctx, product); err != nil {
		return nil, err
	}
	return s.repo.SaveProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, key domain.ProductKey, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	existing, err := s.repo.GetProduct(ctx, key)
	if err != nil {
		return nil, err
	}
	product.ID = existing.ID
	product.BusinessAreaID = existing.BusinessAreaID
	if product.Type == "" {
		product.Type = existing.Type
	}
	if err := product.Validate(); err != nil {
		return nil, mapError(err)
	}
	if err := s.checkDefaultService(ctx, product); err != nil {
		return nil, err
	}
	return s.repo.SaveProduct(ctx, product)
}

// DeactivateProduct soft-deletes a product; orders referencing it stay intact.
func (s *Service) DeactivateProduct(ctx context.Context, key domain.ProductKey) error {
	product, err := s.repo.GetProduct(ctx, key)
	if err != nil {
		return err
	}
	product.IsActive = false
	_, err = s.repo.SaveProduct(ctx, product)
	return err
}

func (s *Service) GetProduct(ctx context.Context, key domain.ProductKey) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, key)
}

func (s *Service) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) CreateService(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	if service == nil {
		return nil, errors.New("service is nil")
	}
	service.ID = 0
	service.IsActive = true
	if err := service.Validate(); err != nil {
		return nil, mapError(err)
	}
	for _, line := range service.Products {
		if _, err := s.repo.GetProduct(ctx, line.ProductKey()); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				return nil, fmt.Errorf("%w: bundled product %s: %w", ErrInvalidInput, line.ProductKey(), err)
			}
			return nil, err
		}
	}
	return s.repo.SaveService(ctx, service)
}

func (s *Service) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	return s.repo.GetService(ctx, id)
}

func (s *Service) ListServices(ctx context.Context, includeInactive bool) ([]domain.Service, error) {
	return s.repo.ListServices(ctx, includeInactive)
}

func (s *Service) GetStock(ctx context.Context, key domain.ProductKey) (*domain.Stock, error) {
	return s.stocks.GetStock(ctx, key)
}

func (s *Service) ListStock(ctx context.Context, businessAreaID int64) ([]domain.Stock, error) {
	return s.stocks.ListStock(ctx, businessAreaID)
}

// AdjustStock records a stock receipt (positive delta) or write-off (negative delta).
func (s *Service) AdjustStock(ctx context.Context, key domain.ProductKey, delta int64) (*domain.Stock, error) {
	if delta == 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	product, err := s.repo.GetProduct(ctx, key)
	if err != nil {
		return nil, err
	}
	if !product.IsGood() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNotStocked)
	}
	return s.stocks.AdjustStock(ctx, key, delta)
}

func (s *Service) checkDefaultService(ctx context.Context, product *domain.Product) error {
	if product.DefaultServiceID == nil {
		return nil
	}
	if _, err := s.repo.GetService(ctx, *product.DefaultServiceID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("%w: default service %d: %w", ErrInvalidInput, *product.DefaultServiceID, err)
		}
		return err
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
