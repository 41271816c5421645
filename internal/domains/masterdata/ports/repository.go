package ports

import (
	"context"
	"errors"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
)

// ErrNotFound indicates the requested record is absent.
var ErrNotFound = errors.New("master data record not found")

// Filter narrows List results. Zero values match everything.
type Filter struct {
	BusinessAreaID int64
}

// Repository persists one kind of master data record.
type Repository[T any] interface {
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	Save(ctx context.Context, entity *T) (*T, error)
}

// Repositories bundles the master data tables.
type Repositories struct {
	BusinessAreas  Repository[domain.BusinessArea]
	PaymentMethods Repository[domain.PaymentMethod]
	ReferralTypes  Repository[domain.ReferralType]
	Patients       Repository[domain.Patient]
	Employees      Repository[domain.Employee]
}
