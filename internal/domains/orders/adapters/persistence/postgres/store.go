package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogpg "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/persistence/postgres"
	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	schedulepg "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/persistence/postgres"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	pgplatform "github.com/ignasiusberneo/clinic-admin/internal/platform/postgres"
)

var (
	_ ports.Store            = (*Store)(nil)
	_ ports.Tx               = (*tx)(nil)
	_ ports.IdempotencyStore = (*Store)(nil)
)

// Store persists orders in PostgreSQL using GORM. Quota and stock changes go
// through the schedule and catalog helpers on the same transaction.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed order store. Caller manages DB lifecycle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Models lists the order tables for migrations.
func Models() []any {
	return []any{&OrderRecord{}, &ItemRecord{}, &PaymentRecord{}, &IdempotencyRecord{}}
}

// OrderRecord maps orders.
type OrderRecord struct {
	ID             string          `gorm:"primaryKey;column:id;size:32"`
	BusinessAreaID int64           `gorm:"column:business_area_id;index:idx_orders_area_created,priority:1"`
	TotalPrice     int64           `gorm:"column:total_price"`
	DP             int64           `gorm:"column:dp"`
	Status         string          `gorm:"column:status;size:16;index"`
	Attendance     string          `gorm:"column:attendance;size:16"`
	CreatedAt      time.Time       `gorm:"column:created_at;index:idx_orders_area_created,priority:2"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
	Items          []ItemRecord    `gorm:"foreignKey:OrderID"`
	Payments       []PaymentRecord `gorm:"foreignKey:OrderID"`
}

func (OrderRecord) TableName() string { return "orders" }

// ItemRecord maps order_items.
type ItemRecord struct {
	ID                    int64  `gorm:"primaryKey;column:id"`
	OrderID               string `gorm:"column:order_id;size:32;index"`
	ProductID             int64  `gorm:"column:product_id"`
	ProductBusinessAreaID int64  `gorm:"column:product_business_area_id"`
	ScheduleID            *int64 `gorm:"column:schedule_id;index"`
	Quantity              int64  `gorm:"column:quantity"`
	UnitUsed              string `gorm:"column:unit_used;size:8"`
	Price                 int64  `gorm:"column:price"`
	ServiceID             *int64 `gorm:"column:service_id"`
	ServicePrice          int64  `gorm:"column:service_price"`
	ServiceQuantity       int64  `gorm:"column:service_quantity"`
	IsAssigned            bool   `gorm:"column:is_assigned"`
	PatientID             *int64 `gorm:"column:patient_id"`
}

func (ItemRecord) TableName() string { return "order_items" }

// PaymentRecord maps order_payments. Rows are append-only.
type PaymentRecord struct {
	ID              int64     `gorm:"primaryKey;column:id"`
	OrderID         string    `gorm:"column:order_id;size:32;index"`
	PaymentMethodID int64     `gorm:"column:payment_method_id"`
	Amount          int64     `gorm:"column:amount"`
	Type            string    `gorm:"column:type;size:16"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (PaymentRecord) TableName() string { return "order_payments" }

// IdempotencyRecord maps order_idempotency_keys.
type IdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:128"`
	RequestHash string    `gorm:"column:request_hash;size:64"`
	OrderID     string    `gorm:"column:order_id;size:32"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (IdempotencyRecord) TableName() string { return "order_idempotency_keys" }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(ctx, &tx{db: db})
	})
	if pgplatform.IsTxConflict(err) {
		return fmt.Errorf("%w: %w", ports.ErrTxConflict, err)
	}
	return err
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	return loadOrder(s.db.WithContext(ctx), id, false, true)
}

func (s *Store) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Order("created_at DESC, id DESC")
	if filter.BusinessAreaID > 0 {
		query = query.Where("business_area_id = ?", filter.BusinessAreaID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var records []OrderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]domain.Order, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

// Get implements ports.IdempotencyStore.
func (s *Store) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record IdempotencyRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ports.IdempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   record.CreatedAt,
	}, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres order store not configured")
	}
	return nil
}

// loadOrder reads an order with items and payments. lock takes a row lock on
// the order so concurrent mutations serialize.
func loadOrder(db *gorm.DB, id string, lock, withSchedules bool) (*domain.Order, error) {
	query := db
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record OrderRecord
	if err := query.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	if err := db.Where("order_id = ?", id).Order("id ASC").Find(&record.Items).Error; err != nil {
		return nil, err
	}
	if err := db.Where("order_id = ?", id).Order("created_at ASC, id ASC").Find(&record.Payments).Error; err != nil {
		return nil, err
	}
	order := record.toDomain()
	if !withSchedules {
		return &order, nil
	}
	ids := make([]int64, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ScheduleID != nil {
			ids = append(ids, *item.ScheduleID)
		}
	}
	if len(ids) == 0 {
		return &order, nil
	}
	var schedules []schedulepg.ScheduleRecord
	if err := db.Where("id IN ?", ids).Find(&schedules).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]scheduledomain.Schedule, len(schedules))
	for i := range schedules {
		byID[schedules[i].ID] = schedules[i].ToDomain()
	}
	for i := range order.Items {
		if order.Items[i].ScheduleID == nil {
			continue
		}
		if s, ok := byID[*order.Items[i].ScheduleID]; ok {
			order.Items[i].Schedule = &s
		}
	}
	return &order, nil
}

type tx struct {
	db *gorm.DB
}

func (t *tx) LockOrder(_ context.Context, id string) (*domain.Order, error) {
	return loadOrder(t.db, id, true, false)
}

func (t *tx) InsertOrder(_ context.Context, order *domain.Order) error {
	record := orderToRecord(order)
	items := record.Items
	record.Items = nil
	if err := t.db.Omit(clause.Associations).Create(&record).Error; err != nil {
		if pgplatform.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ports.ErrDuplicateOrderID, order.ID)
		}
		return err
	}
	if len(items) == 0 {
		return nil
	}
	if err := t.db.Create(&items).Error; err != nil {
		return err
	}
	for i := range items {
		order.Items[i].ID = items[i].ID
		order.Items[i].OrderID = order.ID
	}
	return nil
}

func (t *tx) UpdateOrder(_ context.Context, order *domain.Order) error {
	result := t.db.Model(&OrderRecord{}).Where("id = ?", order.ID).Updates(map[string]any{
		"total_price": order.TotalPrice,
		"dp":          order.DP,
		"status":      string(order.Status),
		"attendance":  string(order.Attendance),
		"updated_at":  order.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (t *tx) InsertItem(_ context.Context, item *domain.Item) error {
	record := itemToRecord(item)
	record.ID = 0
	if err := t.db.Create(&record).Error; err != nil {
		return err
	}
	item.ID = record.ID
	return nil
}

func (t *tx) UpdateItem(_ context.Context, item *domain.Item) error {
	result := t.db.Model(&ItemRecord{}).Where("id = ? AND order_id = ?", item.ID, item.OrderID).Updates(map[string]any{
		"schedule_id": item.ScheduleID,
		"is_assigned": item.IsAssigned,
		"patient_id":  item.PatientID,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (t *tx) InsertPayment(_ context.Context, payment *domain.Payment) error {
	record := PaymentRecord{
		OrderID:         payment.OrderID,
		PaymentMethodID: payment.PaymentMethodID,
		Amount:          payment.Amount,
		Type:            string(payment.Type),
		CreatedAt:       payment.CreatedAt,
	}
	if err := t.db.Create(&record).Error; err != nil {
		return err
	}
	payment.ID = record.ID
	return nil
}

func (t *tx) ClaimIdempotencyKey(_ context.Context, record ports.IdempotencyRecord) error {
	row := IdempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   record.CreatedAt,
	}
	if err := t.db.Create(&row).Error; err != nil {
		if pgplatform.IsUniqueViolation(err) {
			return ports.ErrIdempotencyKeyTaken
		}
		return err
	}
	return nil
}

func (t *tx) GetSchedule(_ context.Context, id int64) (*scheduledomain.Schedule, error) {
	s, err := schedulepg.GetScheduleTx(t.db, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *tx) ReserveQuota(_ context.Context, scheduleID, n int64) (scheduledomain.Schedule, error) {
	return schedulepg.ReserveTx(t.db, scheduleID, n)
}

func (t *tx) ReleaseQuota(_ context.Context, scheduleID, n int64) (scheduledomain.Schedule, error) {
	return schedulepg.ReleaseTx(t.db, scheduleID, n)
}

func (t *tx) GetService(_ context.Context, id int64) (*catalogdomain.Service, error) {
	s, err := catalogpg.GetServiceTx(t.db, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *tx) GetProduct(_ context.Context, key catalogdomain.ProductKey) (*catalogdomain.Product, error) {
	p, err := catalogpg.GetProductTx(t.db, key)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *tx) AdjustStock(_ context.Context, key catalogdomain.ProductKey, delta int64) error {
	return catalogpg.AdjustStockTx(t.db, key, delta)
}

func orderToRecord(o *domain.Order) OrderRecord {
	record := OrderRecord{
		ID:             o.ID,
		BusinessAreaID: o.BusinessAreaID,
		TotalPrice:     o.TotalPrice,
		DP:             o.DP,
		Status:         string(o.Status),
		Attendance:     string(o.Attendance),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for i := range o.Items {
		item := itemToRecord(&o.Items[i])
		item.ID = 0
		item.OrderID = o.ID
		record.Items = append(record.Items, item)
	}
	return record
}

func itemToRecord(i *domain.Item) ItemRecord {
	return ItemRecord{
		ID:                    i.ID,
		OrderID:               i.OrderID,
		ProductID:             i.ProductID,
		ProductBusinessAreaID: i.ProductBusinessAreaID,
		ScheduleID:            i.ScheduleID,
		Quantity:              i.Quantity,
		UnitUsed:              string(i.UnitUsed),
		Price:                 i.Price,
		ServiceID:             i.ServiceID,
		ServicePrice:          i.ServicePrice,
		ServiceQuantity:       i.ServiceQuantity,
		IsAssigned:            i.IsAssigned,
		PatientID:             i.PatientID,
	}
}

func (r OrderRecord) toDomain() domain.Order {
	order := domain.Order{
		ID:             r.ID,
		BusinessAreaID: r.BusinessAreaID,
		TotalPrice:     r.TotalPrice,
		DP:             r.DP,
		Status:         domain.Status(r.Status),
		Attendance:     domain.Attendance(r.Attendance),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	for _, i := range r.Items {
		order.Items = append(order.Items, domain.Item{
			ID:                    i.ID,
			OrderID:               i.OrderID,
			ProductID:             i.ProductID,
			ProductBusinessAreaID: i.ProductBusinessAreaID,
			ScheduleID:            i.ScheduleID,
			Quantity:              i.Quantity,
			UnitUsed:              catalogdomain.UnitType(i.UnitUsed),
			Price:                 i.Price,
			ServiceID:             i.ServiceID,
			ServicePrice:          i.ServicePrice,
			ServiceQuantity:       i.ServiceQuantity,
			IsAssigned:            i.IsAssigned,
			PatientID:             i.PatientID,
		})
	}
	for _, p := range r.Payments {
		order.Payments = append(order.Payments, domain.Payment{
			ID:              p.ID,
			OrderID:         p.OrderID,
			PaymentMethodID: p.PaymentMethodID,
			Amount:          p.Amount,
			Type:            domain.PaymentType(p.Type),
			CreatedAt:       p.CreatedAt,
		})
	}
	return order
}
