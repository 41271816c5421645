package memory

import (
	"context"
	"errors"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
)

// Tables shared with other in-memory adapters.
var (
	BusinessAreas  = memdb.NewTable[int64, domain.BusinessArea]("business_areas")
	PaymentMethods = memdb.NewTable[int64, domain.PaymentMethod]("payment_methods")
	ReferralTypes  = memdb.NewTable[int64, domain.ReferralType]("referral_types")
	Patients       = memdb.NewTable[int64, domain.Patient]("patients")
	Employees      = memdb.NewTable[int64, domain.Employee]("employees")
)

type entityPtr[T any] interface {
	*T
	domain.Entity
}

// Repository is an in-memory master data table.
type Repository[T any, P entityPtr[T]] struct {
	db    *memdb.DB
	table memdb.Table[int64, T]
}

// NewRepositories builds every master data repository over db.
func NewRepositories(db *memdb.DB) ports.Repositories {
	return ports.Repositories{
		BusinessAreas:  &Repository[domain.BusinessArea, *domain.BusinessArea]{db: db, table: BusinessAreas},
		PaymentMethods: &Repository[domain.PaymentMethod, *domain.PaymentMethod]{db: db, table: PaymentMethods},
		ReferralTypes:  &Repository[domain.ReferralType, *domain.ReferralType]{db: db, table: ReferralTypes},
		Patients:       &Repository[domain.Patient, *domain.Patient]{db: db, table: Patients},
		Employees:      &Repository[domain.Employee, *domain.Employee]{db: db, table: Employees},
	}
}

func (r *Repository[T, P]) Get(_ context.Context, id int64) (*T, error) {
	var (
		row T
		ok  bool
	)
	_ = r.db.View(func(tx *memdb.Tx) error {
		row, ok = r.table.Get(tx, id)
		return nil
	})
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &row, nil
}

func (r *Repository[T, P]) List(_ context.Context, filter ports.Filter) ([]T, error) {
	var rows []T
	_ = r.db.View(func(tx *memdb.Tx) error {
		rows = r.table.Filter(tx, func(v T) bool {
			if filter.BusinessAreaID == 0 {
				return true
			}
			scoped, ok := any(P(&v)).(domain.Scoped)
			return !ok || scoped.AreaID() == filter.BusinessAreaID
		}, func(a, b T) bool {
			return P(&a).Identity() < P(&b).Identity()
		})
		return nil
	})
	return rows, nil
}

func (r *Repository[T, P]) Save(_ context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, errors.New("entity is nil")
	}
	clone := *entity
	err := r.db.Update(func(tx *memdb.Tx) error {
		p := P(&clone)
		if p.Identity() == 0 {
			p.AssignID(tx.NextID(r.table.Name()))
		} else if _, ok := r.table.Get(tx, p.Identity()); !ok {
			return ports.ErrNotFound
		}
		r.table.Put(tx, p.Identity(), clone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}
