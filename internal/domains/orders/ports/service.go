package ports

import (
	"context"

	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	masterdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
)

// CreateOrderInput books quantity units of a service on a schedule.
type CreateOrderInput struct {
	BusinessAreaID int64
	ServiceID      int64
	ScheduleID     int64
	Quantity       int64
	IdempotencyKey string
}

// PaymentInput records one payment.
type PaymentInput struct {
	OrderID         string
	PaymentMethodID int64
	Amount          int64
	Type            string
}

// RescheduleInput moves an item to another schedule.
type RescheduleInput struct {
	OrderID            string
	ItemID             int64
	SelectedScheduleID int64
}

// AddItemInput appends a product line to an open order.
type AddItemInput struct {
	OrderID        string
	BusinessAreaID int64
	ProductID      int64
	Quantity       int64
	UnitType       catalogdomain.UnitType
	ScheduleID     *int64
}

// AssignInput links an item to the patient receiving it.
type AssignInput struct {
	OrderID   string
	ItemID    int64
	PatientID int64
}

// Service exposes the order engine.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
	RecordPayment(ctx context.Context, input PaymentInput) (*domain.Order, error)
	RescheduleItem(ctx context.Context, input RescheduleInput) (*domain.Item, error)
	AddItem(ctx context.Context, input AddItemInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	UpdateAttendance(ctx context.Context, id string, attendance domain.Attendance) (*domain.Order, error)
	AssignItem(ctx context.Context, input AssignInput) (*domain.Order, error)
}

// PaymentMethods resolves payment methods.
type PaymentMethods interface {
	Get(ctx context.Context, id int64) (*masterdomain.PaymentMethod, error)
}

// Patients resolves patients.
type Patients interface {
	Get(ctx context.Context, id int64) (*masterdomain.Patient, error)
}
