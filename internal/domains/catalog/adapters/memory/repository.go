package memory

import (
	"context"
	"errors"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
)

// Tables shared with other in-memory adapters.
var (
	Products = memdb.NewTable[domain.ProductKey, domain.Product]("products")
	Services = memdb.NewTable[int64, domain.Service]("services")
	Stocks   = memdb.NewTable[domain.ProductKey, domain.Stock]("stocks")
)

var (
	_ ports.Repository      = (*Repository)(nil)
	_ ports.StockRepository = (*Repository)(nil)
)

// Repository is an in-memory catalog and stock adapter.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	err := r.db.Update(func(tx *memdb.Tx) error {
		if clone.ID == 0 {
			clone.ID = tx.NextID(Products.Name())
		}
		Products.Put(tx, clone.Key(), clone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) GetProduct(_ context.Context, key domain.ProductKey) (*domain.Product, error) {
	var (
		product domain.Product
		ok      bool
	)
	_ = r.db.View(func(tx *memdb.Tx) error {
		product, ok = Products.Get(tx, key)
		return nil
	})
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &product, nil
}

func (r *Repository) ListProducts(_ context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	var list []domain.Product
	_ = r.db.View(func(tx *memdb.Tx) error {
		list = Products.Filter(tx, func(p domain.Product) bool {
			if filter.BusinessAreaID > 0 && p.BusinessAreaID != filter.BusinessAreaID {
				return false
			}
			if filter.Type != "" && p.Type != filter.Type {
				return false
			}
			return filter.IncludeInactive || p.IsActive
		}, func(a, b domain.Product) bool {
			if a.BusinessAreaID != b.BusinessAreaID {
				return a.BusinessAreaID < b.BusinessAreaID
			}
			return a.ID < b.ID
		})
		return nil
	})
	return list, nil
}

func (r *Repository) SaveService(_ context.Context, service *domain.Service) (*domain.Service, error) {
	if service == nil {
		return nil, errors.New("service is nil")
	}
	clone := service.Clone()
	err := r.db.Update(func(tx *memdb.Tx) error {
		if clone.ID == 0 {
			clone.ID = tx.NextID(Services.Name())
		}
		Services.Put(tx, clone.ID, clone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := clone.Clone()
	return &out, nil
}

func (r *Repository) GetService(_ context.Context, id int64) (*domain.Service, error) {
	var (
		service domain.Service
		ok      bool
	)
	_ = r.db.View(func(tx *memdb.Tx) error {
		service, ok = Services.Get(tx, id)
		return nil
	})
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := service.Clone()
	return &out, nil
}

func (r *Repository) ListServices(_ context.Context, includeInactive bool) ([]domain.Service, error) {
	var list []domain.Service
	_ = r.db.View(func(tx *memdb.Tx) error {
		list = Services.Filter(tx, func(s domain.Service) bool {
			return includeInactive || s.IsActive
		}, func(a, b domain.Service) bool { return a.ID < b.ID })
		return nil
	})
	for i := range list {
		list[i] = list[i].Clone()
	}
	return list, nil
}

func (r *Repository) GetStock(_ context.Context, key domain.ProductKey) (*domain.Stock, error) {
	var (
		stock domain.Stock
		ok    bool
	)
	_ = r.db.View(func(tx *memdb.Tx) error {
		stock, ok = Stocks.Get(tx, key)
		return nil
	})
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &stock, nil
}

func (r *Repository) ListStock(_ context.Context, businessAreaID int64) ([]domain.Stock, error) {
	var list []domain.Stock
	_ = r.db.View(func(tx *memdb.Tx) error {
		list = Stocks.Filter(tx, func(s domain.Stock) bool {
			return businessAreaID == 0 || s.ProductBusinessAreaID == businessAreaID
		}, func(a, b domain.Stock) bool {
			if a.ProductBusinessAreaID != b.ProductBusinessAreaID {
				return a.ProductBusinessAreaID < b.ProductBusinessAreaID
			}
			return a.ProductID < b.ProductID
		})
		return nil
	})
	return list, nil
}

func (r *Repository) AdjustStock(_ context.Context, key domain.ProductKey, delta int64) (*domain.Stock, error) {
	var out domain.Stock
	err := r.db.Update(func(tx *memdb.Tx) error {
		var err error
		out, err = AdjustStockTx(tx, key, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AdjustStockTx applies delta inside an existing transaction. A missing row
// counts as zero, so a receipt creates it and a decrement fails.
func AdjustStockTx(tx *memdb.Tx, key domain.ProductKey, delta int64) (domain.Stock, error) {
	stock, ok := Stocks.Get(tx, key)
	if !ok {
		stock = domain.Stock{ProductID: key.ID, ProductBusinessAreaID: key.BusinessAreaID}
	}
	if stock.Quantity+delta < 0 {
		return domain.Stock{}, ports.ErrInsufficientStock
	}
	stock.Quantity += delta
	Stocks.Put(tx, key, stock)
	return stock, nil
}
