package memory

import (
	"context"

	catalogmemory "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	catalogports "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	schedulememory "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/memory"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	scheduleports "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
)

// Tables owned by the order engine.
var (
	Orders          = memdb.NewTable[string, domain.Order]("orders")
	Items           = memdb.NewTable[int64, domain.Item]("order_items")
	Payments        = memdb.NewTable[int64, domain.Payment]("order_payments")
	IdempotencyKeys = memdb.NewTable[string, ports.IdempotencyRecord]("order_idempotency_keys")
)

var (
	_ ports.Store            = (*Store)(nil)
	_ ports.Tx               = (*tx)(nil)
	_ ports.IdempotencyStore = (*Store)(nil)
)

// Store is the in-memory order store. Transactions are serialized by memdb,
// so the row lock of LockOrder is implied.
type Store struct {
	db *memdb.DB
}

func NewStore(db *memdb.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return s.db.Update(func(mtx *memdb.Tx) error {
		return fn(ctx, &tx{mtx: mtx})
	})
}

func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	var (
		order *domain.Order
		err   error
	)
	_ = s.db.View(func(mtx *memdb.Tx) error {
		order, err = loadOrder(mtx, id, true)
		return nil
	})
	return order, err
}

func (s *Store) ListOrders(_ context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	var out []domain.Order
	_ = s.db.View(func(mtx *memdb.Tx) error {
		rows := Orders.Filter(mtx, func(o domain.Order) bool {
			if filter.BusinessAreaID > 0 && o.BusinessAreaID != filter.BusinessAreaID {
				return false
			}
			return filter.Status == "" || o.Status == filter.Status
		}, func(a, b domain.Order) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		})
		if filter.Offset >= len(rows) {
			return nil
		}
		rows = rows[filter.Offset:]
		if filter.Limit > 0 && len(rows) > filter.Limit {
			rows = rows[:filter.Limit]
		}
		for _, row := range rows {
			order, err := loadOrder(mtx, row.ID, false)
			if err == nil {
				out = append(out, *order)
			}
		}
		return nil
	})
	return out, nil
}

// Get implements ports.IdempotencyStore.
func (s *Store) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	var (
		record ports.IdempotencyRecord
		ok     bool
	)
	_ = s.db.View(func(mtx *memdb.Tx) error {
		record, ok = IdempotencyKeys.Get(mtx, key)
		return nil
	})
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func loadOrder(mtx *memdb.Tx, id string, withSchedules bool) (*domain.Order, error) {
	order, ok := Orders.Get(mtx, id)
	if !ok {
		return nil, ports.ErrNotFound
	}
	order.Items = Items.Filter(mtx, func(i domain.Item) bool { return i.OrderID == id },
		func(a, b domain.Item) bool { return a.ID < b.ID })
	order.Payments = Payments.Filter(mtx, func(p domain.Payment) bool { return p.OrderID == id },
		func(a, b domain.Payment) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		})
	if withSchedules {
		for i := range order.Items {
			if order.Items[i].ScheduleID == nil {
				continue
			}
			if s, ok := schedulememory.Schedules.Get(mtx, *order.Items[i].ScheduleID); ok {
				order.Items[i].Schedule = &s
			}
		}
	}
	return &order, nil
}

type tx struct {
	mtx *memdb.Tx
}

func (t *tx) LockOrder(_ context.Context, id string) (*domain.Order, error) {
	return loadOrder(t.mtx, id, false)
}

func (t *tx) InsertOrder(_ context.Context, order *domain.Order) error {
	if _, exists := Orders.Get(t.mtx, order.ID); exists {
		return ports.ErrDuplicateOrderID
	}
	Orders.Put(t.mtx, order.ID, orderRow(order))
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := t.InsertItem(context.Background(), &order.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) UpdateOrder(_ context.Context, order *domain.Order) error {
	if _, exists := Orders.Get(t.mtx, order.ID); !exists {
		return ports.ErrNotFound
	}
	Orders.Put(t.mtx, order.ID, orderRow(order))
	return nil
}

func (t *tx) InsertItem(_ context.Context, item *domain.Item) error {
	item.ID = t.mtx.NextID(Items.Name())
	row := *item
	row.Schedule = nil
	Items.Put(t.mtx, item.ID, row)
	return nil
}

func (t *tx) UpdateItem(_ context.Context, item *domain.Item) error {
	if _, exists := Items.Get(t.mtx, item.ID); !exists {
		return ports.ErrNotFound
	}
	row := *item
	row.Schedule = nil
	Items.Put(t.mtx, item.ID, row)
	return nil
}

func (t *tx) InsertPayment(_ context.Context, payment *domain.Payment) error {
	payment.ID = t.mtx.NextID(Payments.Name())
	Payments.Put(t.mtx, payment.ID, *payment)
	return nil
}

func (t *tx) ClaimIdempotencyKey(_ context.Context, record ports.IdempotencyRecord) error {
	if _, exists := IdempotencyKeys.Get(t.mtx, record.Key); exists {
		return ports.ErrIdempotencyKeyTaken
	}
	IdempotencyKeys.Put(t.mtx, record.Key, record)
	return nil
}

func (t *tx) GetSchedule(_ context.Context, id int64) (*scheduledomain.Schedule, error) {
	s, ok := schedulememory.Schedules.Get(t.mtx, id)
	if !ok {
		return nil, scheduleports.ErrNotFound
	}
	return &s, nil
}

func (t *tx) ReserveQuota(_ context.Context, scheduleID, n int64) (scheduledomain.Schedule, error) {
	return schedulememory.ReserveTx(t.mtx, scheduleID, n)
}

func (t *tx) ReleaseQuota(_ context.Context, scheduleID, n int64) (scheduledomain.Schedule, error) {
	return schedulememory.ReleaseTx(t.mtx, scheduleID, n)
}

func (t *tx) GetService(_ context.Context, id int64) (*catalogdomain.Service, error) {
	s, ok := catalogmemory.Services.Get(t.mtx, id)
	if !ok {
		return nil, catalogports.ErrNotFound
	}
	clone := s.Clone()
	return &clone, nil
}

func (t *tx) GetProduct(_ context.Context, key catalogdomain.ProductKey) (*catalogdomain.Product, error) {
	p, ok := catalogmemory.Products.Get(t.mtx, key)
	if !ok {
		return nil, catalogports.ErrNotFound
	}
	return &p, nil
}

func (t *tx) AdjustStock(_ context.Context, key catalogdomain.ProductKey, delta int64) error {
	_, err := catalogmemory.AdjustStockTx(t.mtx, key, delta)
	return err
}

func orderRow(order *domain.Order) domain.Order {
	row := *order
	row.Items = nil
	row.Payments = nil
	return row
}

