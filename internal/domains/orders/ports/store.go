package ports

import (
	"context"
	"errors"

	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
)

var (
	// ErrNotFound indicates the order is absent.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrderID indicates the generated order id already exists.
	ErrDuplicateOrderID = errors.New("order id already exists")
	// ErrTxConflict indicates the transaction lost a serialization or deadlock race and may be retried.
	ErrTxConflict = errors.New("transaction conflict")
	// ErrIdempotencyKeyTaken indicates another transaction already claimed the key.
	ErrIdempotencyKeyTaken = errors.New("idempotency key already claimed")
)

// ListFilter narrows ListOrders. Zero values match everything.
type ListFilter struct {
	BusinessAreaID int64
	Status         domain.Status
	Limit          int
	Offset         int
}

// Store gives the engine transactional access to orders and the rows they touch.
type Store interface {
	// WithinTx runs fn in one transaction. Any error from fn rolls back every
	// mutation made through tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]domain.Order, error)
}

// Tx is the set of mutations an engine operation may perform atomically.
// Quota and stock changes are compare-and-swap updates.
type Tx interface {
	// LockOrder loads the order with items and payments and holds a row lock
	// until the transaction ends.
	LockOrder(ctx context.Context, id string) (*domain.Order, error)
	// InsertOrder stores the order row and its items, assigning item ids.
	InsertOrder(ctx context.Context, order *domain.Order) error
	UpdateOrder(ctx context.Context, order *domain.Order) error
	InsertItem(ctx context.Context, item *domain.Item) error
	UpdateItem(ctx context.Context, item *domain.Item) error
	InsertPayment(ctx context.Context, payment *domain.Payment) error
	// ClaimIdempotencyKey stores the record with the order it creates. A key
	// that already exists fails with ErrIdempotencyKeyTaken.
	ClaimIdempotencyKey(ctx context.Context, record IdempotencyRecord) error

	GetSchedule(ctx context.Context, id int64) (*scheduledomain.Schedule, error)
	// ReserveQuota fails with scheduledomain.ErrQuotaExhausted when fewer than n remain.
	ReserveQuota(ctx context.Context, scheduleID, n int64) (scheduledomain.Schedule, error)
	// ReleaseQuota fails with scheduledomain.ErrQuotaOverflow when the result would exceed max quota.
	ReleaseQuota(ctx context.Context, scheduleID, n int64) (scheduledomain.Schedule, error)

	GetService(ctx context.Context, id int64) (*catalogdomain.Service, error)
	GetProduct(ctx context.Context, key catalogdomain.ProductKey) (*catalogdomain.Product, error)
	// AdjustStock fails with catalog ErrInsufficientStock when the result would be negative.
	AdjustStock(ctx context.Context, key catalogdomain.ProductKey, delta int64) error
}
