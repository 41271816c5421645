package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
)

var (
	_ ports.Repository      = (*Repository)(nil)
	_ ports.StockRepository = (*Repository)(nil)
)

// Repository persists catalog rows and stock in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed catalog repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists the catalog tables for migrations.
func Models() []any {
	return []any{&ProductRecord{}, &ServiceRecord{}, &ServiceProductRecord{}, &StockRecord{}}
}

// ProductRecord maps products. Exported for adapters that read products inside their own transactions.
type ProductRecord struct {
	ID               int64     `gorm:"primaryKey;autoIncrement;column:id"`
	BusinessAreaID   int64     `gorm:"primaryKey;autoIncrement:false;column:business_area_id"`
	Name             string    `gorm:"column:name;size:255"`
	Type             string    `gorm:"column:type;type:varchar(16);index"`
	LargeUnit        string    `gorm:"column:large_unit;size:64"`
	SmallUnit        string    `gorm:"column:small_unit;size:64"`
	Tariff           int64     `gorm:"column:tariff"`
	SmallUnitTariff  int64     `gorm:"column:small_unit_tariff"`
	UnitConversion   int64     `gorm:"column:unit_conversion;default:1"`
	DefaultServiceID *int64    `gorm:"column:default_service_id"`
	IsActive         bool      `gorm:"column:is_active;index"`
	IsSale           bool      `gorm:"column:is_sale"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (ProductRecord) TableName() string { return "products" }

// ServiceRecord maps services.
type ServiceRecord struct {
	ID        int64                  `gorm:"primaryKey;column:id"`
	Name      string                 `gorm:"column:name;size:255"`
	Price     int64                  `gorm:"column:price"`
	IsDefault bool                   `gorm:"column:is_default"`
	IsActive  bool                   `gorm:"column:is_active;index"`
	Products  []ServiceProductRecord `gorm:"foreignKey:ServiceID;references:ID"`
	CreatedAt time.Time              `gorm:"column:created_at"`
	UpdatedAt time.Time              `gorm:"column:updated_at"`
}

func (ServiceRecord) TableName() string { return "services" }

// ServiceProductRecord maps one bundle line.
type ServiceProductRecord struct {
	ServiceID             int64  `gorm:"primaryKey;autoIncrement:false;column:service_id"`
	ProductID             int64  `gorm:"primaryKey;autoIncrement:false;column:product_id"`
	ProductBusinessAreaID int64  `gorm:"primaryKey;autoIncrement:false;column:product_business_area_id"`
	Quantity              int64  `gorm:"column:quantity"`
	UnitType              string `gorm:"column:unit_type;type:varchar(8)"`
}

func (ServiceProductRecord) TableName() string { return "service_products" }

// StockRecord maps stock rows.
type StockRecord struct {
	ProductID             int64     `gorm:"primaryKey;autoIncrement:false;column:product_id"`
	ProductBusinessAreaID int64     `gorm:"primaryKey;autoIncrement:false;column:product_business_area_id"`
	Quantity              int64     `gorm:"column:quantity"`
	UpdatedAt             time.Time `gorm:"column:updated_at"`
}

func (StockRecord) TableName() string { return "stocks" }

func (r *Repository) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := ProductToRecord(product)
	db := r.db.WithContext(ctx)
	if record.ID == 0 {
		if err := db.Create(&record).Error; err != nil {
			return nil, err
		}
	} else {
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}, {Name: "business_area_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "type", "large_unit", "small_unit", "tariff", "small_unit_tariff",
				"unit_conversion", "default_service_id", "is_active", "is_sale", "updated_at",
			}),
		}).Create(&record).Error
		if err != nil {
			return nil, err
		}
	}
	return r.GetProduct(ctx, domain.ProductKey{ID: record.ID, BusinessAreaID: record.BusinessAreaID})
}

func (r *Repository) GetProduct(ctx context.Context, key domain.ProductKey) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	product, err := GetProductTx(r.db.WithContext(ctx), key)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("business_area_id ASC, id ASC")
	if filter.BusinessAreaID > 0 {
		query = query.Where("business_area_id = ?", filter.BusinessAreaID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	var records []ProductRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]domain.Product, 0, len(records))
	for i := range records {
		list = append(list, records[i].ToDomain())
	}
	return list, nil
}

// SaveService writes the service row and replaces its bundle lines atomically.
func (r *Repository) SaveService(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if service == nil {
		return nil, errors.New("service is nil")
	}
	record := serviceToRecord(service)
	lines := record.Products
	record.Products = nil
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		if err := tx.Where("service_id = ?", record.ID).Delete(&ServiceProductRecord{}).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ServiceID = record.ID
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetService(ctx, record.ID)
}

func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	service, err := GetServiceTx(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *Repository) ListServices(ctx context.Context, includeInactive bool) ([]domain.Service, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Preload("Products").Order("id ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	var records []ServiceRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]domain.Service, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *Repository) GetStock(ctx context.Context, key domain.ProductKey) (*domain.Stock, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record StockRecord
	err := r.db.WithContext(ctx).
		First(&record, "product_id = ? AND product_business_area_id = ?", key.ID, key.BusinessAreaID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	stock := record.toDomain()
	return &stock, nil
}

func (r *Repository) ListStock(ctx context.Context, businessAreaID int64) ([]domain.Stock, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("product_business_area_id ASC, product_id ASC")
	if businessAreaID > 0 {
		query = query.Where("product_business_area_id = ?", businessAreaID)
	}
	var records []StockRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]domain.Stock, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *Repository) AdjustStock(ctx context.Context, key domain.ProductKey, delta int64) (*domain.Stock, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var stock domain.Stock
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AdjustStockTx(tx, key, delta); err != nil {
			return err
		}
		var record StockRecord
		if err := tx.First(&record, "product_id = ? AND product_business_area_id = ?", key.ID, key.BusinessAreaID).Error; err != nil {
			return err
		}
		stock = record.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// AdjustStockTx applies delta with a compare-and-swap so concurrent writers can
// never drive stock below zero. Positive deltas upsert the row.
func AdjustStockTx(tx *gorm.DB, key domain.ProductKey, delta int64) error {
	if delta >= 0 {
		record := StockRecord{ProductID: key.ID, ProductBusinessAreaID: key.BusinessAreaID, Quantity: delta}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "product_business_area_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("stocks.quantity + ?", delta),
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
	}
	result := tx.Model(&StockRecord{}).
		Where("product_id = ? AND product_business_area_id = ? AND quantity >= ?", key.ID, key.BusinessAreaID, -delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return ports.ErrInsufficientStock
	}
	return nil
}

// GetProductTx loads a product through tx.
func GetProductTx(tx *gorm.DB, key domain.ProductKey) (domain.Product, error) {
	var record ProductRecord
	if err := tx.First(&record, "id = ? AND business_area_id = ?", key.ID, key.BusinessAreaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, ports.ErrNotFound
		}
		return domain.Product{}, err
	}
	return record.ToDomain(), nil
}

// GetServiceTx loads a service and its bundle lines through tx.
func GetServiceTx(tx *gorm.DB, id int64) (domain.Service, error) {
	var record ServiceRecord
	if err := tx.Preload("Products").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Service{}, ports.ErrNotFound
		}
		return domain.Service{}, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres catalog repository not configured")
	}
	return nil
}

// ProductToRecord maps a domain product to its row.
func ProductToRecord(p *domain.Product) ProductRecord {
	return ProductRecord{
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

// ToDomain maps the row to a domain product.
func (r ProductRecord) ToDomain() domain.Product {
	return domain.Product{
		ID:               r.ID,
		BusinessAreaID:   r.BusinessAreaID,
		Name:             r.Name,
		Type:             domain.ProductType(r.Type),
		LargeUnit:        r.LargeUnit,
		SmallUnit:        r.SmallUnit,
		Tariff:           r.Tariff,
		SmallUnitTariff:  r.SmallUnitTariff,
		UnitConversion:   r.UnitConversion,
		DefaultServiceID: r.DefaultServiceID,
		IsActive:         r.IsActive,
		IsSale:           r.IsSale,
	}
}

func serviceToRecord(s *domain.Service) ServiceRecord {
	lines := make([]ServiceProductRecord, 0, len(s.Products))
	for _, line := range s.Products {
		lines = append(lines, ServiceProductRecord{
			ServiceID:             s.ID,
			ProductID:             line.ProductID,
			ProductBusinessAreaID: line.ProductBusinessAreaID,
			Quantity:              line.Quantity,
			UnitType:              string(line.UnitType),
		})
	}
	return ServiceRecord{
		ID:        s.ID,
		Name:      s.Name,
		Price:     s.Price,
		IsDefault: s.IsDefault,
		IsActive:  s.IsActive,
		Products:  lines,
	}
}

func (r ServiceRecord) toDomain() domain.Service {
	lines := make([]domain.ServiceProduct, 0, len(r.Products))
	for _, line := range r.Products {
		lines = append(lines, domain.ServiceProduct{
			ProductID:             line.ProductID,
			ProductBusinessAreaID: line.ProductBusinessAreaID,
			Quantity:              line.Quantity,
			UnitType:              domain.UnitType(line.UnitType),
		})
	}
	return domain.Service{
		ID:        r.ID,
		Name:      r.Name,
		Price:     r.Price,
		IsDefault: r.IsDefault,
		IsActive:  r.IsActive,
		Products:  lines,
	}
}

func (r StockRecord) toDomain() domain.Stock {
	return domain.Stock{
		ProductID:             r.ProductID,
		ProductBusinessAreaID: r.ProductBusinessAreaID,
		Quantity:              r.Quantity,
	}
}
