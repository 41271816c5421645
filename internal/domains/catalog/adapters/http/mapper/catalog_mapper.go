package mapper

import (
	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
)

// ProductRequest is the body of product create and update calls.
type ProductRequest struct {
	BusinessAreaID   int64  `json:"business_area_id" binding:"omitempty,gt=0"`
	Name             string `json:"name" binding:"required,max=255"`
	Type             string `json:"type" binding:"omitempty,oneof=GOOD SERVICE"`
	LargeUnit        string `json:"large_unit" binding:"max=64"`
	SmallUnit        string `json:"small_unit" binding:"max=64"`
	Tariff           int64  `json:"tariff" binding:"gte=0"`
	SmallUnitTariff  int64  `json:"small_unit_tariff" binding:"gte=0"`
	UnitConversion   int64  `json:"unit_conversion" binding:"omitempty,gte=1"`
	DefaultServiceID *int64 `json:"default_service_id" binding:"omitempty,gt=0"`
	IsActive         *bool  `json:"is_active"`
	IsSale           bool   `json:"is_sale"`
}

func (r ProductRequest) ToDomain() *domain.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &domain.Product{
		BusinessAreaID:   r.BusinessAreaID,
		Name:             r.Name,
		Type:             domain.ProductType(r.Type),
		LargeUnit:        r.LargeUnit,
		SmallUnit:        r.SmallUnit,
		Tariff:           r.Tariff,
		SmallUnitTariff:  r.SmallUnitTariff,
		UnitConversion:   r.UnitConversion,
		DefaultServiceID: r.DefaultServiceID,
		IsActive:         active,
		IsSale:           r.IsSale,
	}
}

// Product is the transport view of a product.
type Product struct {
	ID               int64  `json:"id"`
	BusinessAreaID   int64  `json:"business_area_id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	LargeUnit        string `json:"large_unit"`
	SmallUnit        string `json:"small_unit"`
	Tariff           int64  `json:"tariff"`
	SmallUnitTariff  int64  `json:"small_unit_tariff"`
	UnitConversion   int64  `json:"unit_conversion"`
	DefaultServiceID *int64 `json:"default_service_id"`
	IsActive         bool   `json:"is_active"`
	IsSale           bool   `json:"is_sale"`
}

func FromDomainProduct(p *domain.Product) Product {
	if p == nil {
		return Product{}
	}
	return Product{
		ID:               p.ID,
		BusinessAreaID:   p.BusinessAreaID,
		Name:             p.Name,
		Type:             string(p.Type),
		LargeUnit:        p.LargeUnit,
		SmallUnit:        p.SmallUnit,
		Tariff:           p.Tariff,
		SmallUnitTariff:  p.SmallUnitTariff,
		UnitConversion:   p.UnitConversion,
		DefaultServiceID: p.DefaultServiceID,
		IsActive:         p.IsActive,
		IsSale:           p.IsSale,
	}
}

func FromDomainProducts(products []domain.Product) []Product {
	out := make([]Product, 0, len(products))
	for i := range products {
		out = append(out, FromDomainProduct(&products[i]))
	}
	return out
}

// ServiceLine is one bundled product.
type ServiceLine struct {
	ProductID             int64  `json:"product_id" binding:"required,gt=0"`
	ProductBusinessAreaID int64  `json:"product_business_area_id" binding:"required,gt=0"`
	Quantity              int64  `json:"quantity" binding:"required,gt=0"`
	UnitType              string `json:"unit_type" binding:"required,oneof=LARGE SMALL"`
}

// ServiceRequest is the body of POST /api/services.
type ServiceRequest struct {
	Name      string        `json:"name" binding:"required,max=255"`
	Price     int64         `json:"price" binding:"gte=0"`
	IsDefault bool          `json:"is_default"`
	Products  []ServiceLine `json:"products" binding:"required,min=1,dive"`
}

func (r ServiceRequest) ToDomain() *domain.Service {
	service := &domain.Service{
		Name:      r.Name,
		Price:     r.Price,
		IsDefault: r.IsDefault,
		Products:  make([]domain.ServiceProduct, 0, len(r.Products)),
	}
	for _, line := range r.Products {
		service.Products = append(service.Products, domain.ServiceProduct{
			ProductID:             line.ProductID,
			ProductBusinessAreaID: line.ProductBusinessAreaID,
			Quantity:              line.Quantity,
			UnitType:              domain.UnitType(line.UnitType),
		})
	}
	return service
}

// Service is the transport view of a service.
type Service struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Price     int64         `json:"price"`
	IsDefault bool          `json:"is_default"`
	IsActive  bool          `json:"is_active"`
	Products  []ServiceLine `json:"products"`
}

func FromDomainService(s *domain.Service) Service {
	if s == nil {
		return Service{}
	}
	out := Service{
		ID:        s.ID,
		Name:      s.Name,
		Price:     s.Price,
		IsDefault: s.IsDefault,
		IsActive:  s.IsActive,
		Products:  make([]ServiceLine, 0, len(s.Products)),
	}
	for _, line := range s.Products {
		out.Products = append(out.Products, ServiceLine{
			ProductID:             line.ProductID,
			ProductBusinessAreaID: line.ProductBusinessAreaID,
			Quantity:              line.Quantity,
			UnitType:              string(line.UnitType),
		})
	}
	return out
}

func FromDomainServices(services []domain.Service) []Service {
	out := make([]Service, 0, len(services))
	for i := range services {
		out = append(out, FromDomainService(&services[i]))
	}
	return out
}

// StockAdjustRequest is the body of POST /api/stocks/adjust. Delta is in small units.
type StockAdjustRequest struct {
	ProductID      int64 `json:"product_id" binding:"required,gt=0"`
	BusinessAreaID int64 `json:"business_area_id" binding:"required,gt=0"`
	Delta          int64 `json:"delta" binding:"required"`
}

// Stock is the transport view of a stock row.
type Stock struct {
	ProductID             int64 `json:"product_id"`
	ProductBusinessAreaID int64 `json:"product_business_area_id"`
	Quantity              int64 `json:"quantity"`
}

func FromDomainStock(s *domain.Stock) Stock {
	if s == nil {
		return Stock{}
	}
	return Stock{ProductID: s.ProductID, ProductBusinessAreaID: s.ProductBusinessAreaID, Quantity: s.Quantity}
}

func FromDomainStocks(stocks []domain.Stock) []Stock {
	out := make([]Stock, 0, len(stocks))
	for i := range stocks {
		out = append(out, FromDomainStock(&stocks[i]))
	}
	return out
}
