package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
)

// Status is the payment lifecycle state of an order.
type Status string

const (
	StatusUnpaid        Status = "BELUM_BAYAR"
	StatusPartiallyPaid Status = "BELUM_LUNAS"
	StatusPaid          Status = "SUDAH_LUNAS"
	StatusCancelled     Status = "CANCELLED"
)

// ParseStatus validates a raw status filter.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusUnpaid, StatusPartiallyPaid, StatusPaid, StatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Attendance records whether the patient showed up.
type Attendance string

const (
	AttendancePending  Attendance = "PENDING"
	AttendanceAttended Attendance = "HAS_ATTENDED"
	AttendanceNoShow   Attendance = "NO_SHOW"
)

// ParseAttendance validates a raw attendance value.
func ParseAttendance(raw string) (Attendance, error) {
	switch a := Attendance(strings.ToUpper(strings.TrimSpace(raw))); a {
	case AttendancePending, AttendanceAttended, AttendanceNoShow:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAttendance, raw)
	}
}

// PaymentType distinguishes the down payment from later instalments.
type PaymentType string

const (
	PaymentDown       PaymentType = "dp"
	PaymentAdditional PaymentType = "additional"
)

// ParsePaymentType accepts "", "dp" and "additional". Blank resolves to dp for
// the first payment of an order and additional afterwards.
func ParsePaymentType(raw string) (PaymentType, error) {
	switch t := PaymentType(strings.ToLower(strings.TrimSpace(raw))); t {
	case "", PaymentDown, PaymentAdditional:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentType, raw)
	}
}

// DownPaymentPerUnit is the deposit charged per booked unit.
const DownPaymentPerUnit int64 = 10000

var (
	ErrInvalidStatus      = errors.New("unknown order status")
	ErrInvalidAttendance  = errors.New("attendance must be PENDING, HAS_ATTENDED or NO_SHOW")
	ErrInvalidPaymentType = errors.New("payment type must be dp or additional")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")

	ErrAlreadyCancelled = errors.New("order already cancelled")
	ErrOrderSettled     = errors.New("order is fully paid")
	ErrNotPayable       = errors.New("cannot pay an order in this state")
	ErrOverpayment      = errors.New("amount exceeds remaining balance")
	ErrNotModifiable    = errors.New("order can no longer be modified")
	ErrItemNotFound     = errors.New("order item not found")
	ErrAreaMismatch     = errors.New("record belongs to another business area")
)

// Order is a sales order with its items and append-only payment history.
type Order struct {
	ID             string
	BusinessAreaID int64
	TotalPrice     int64
	DP             int64
	Status         Status
	Attendance     Attendance
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []Item
	Payments       []Payment
}

// Item is one product line of an order.
type Item struct {
	ID                    int64
	OrderID               string
	ProductID             int64
	ProductBusinessAreaID int64
	ScheduleID            *int64
	Quantity              int64
	UnitUsed              catalogdomain.UnitType
	Price                 int64
	ServiceID             *int64
	ServicePrice          int64
	ServiceQuantity       int64
	IsAssigned            bool
	PatientID             *int64
	// Schedule is populated on reads for items bound to a schedule.
	Schedule *scheduledomain.Schedule
}

// ProductKey returns the key of the item's product.
func (i Item) ProductKey() catalogdomain.ProductKey {
	return catalogdomain.ProductKey{ID: i.ProductID, BusinessAreaID: i.ProductBusinessAreaID}
}

// Subtotal is price times quantity.
func (i Item) Subtotal() int64 { return i.Price * i.Quantity }

// Payment is one recorded instalment.
type Payment struct {
	ID              int64
	OrderID         string
	PaymentMethodID int64
	Amount          int64
	Type            PaymentType
	CreatedAt       time.Time
}

// DownPayment returns the deposit for quantity booked units, capped at total.
func DownPayment(quantity, total int64) int64 {
	return min(quantity*DownPaymentPerUnit, total)
}

// TotalPaid sums the recorded payments.
func (o Order) TotalPaid() int64 {
	var sum int64
	for _, p := range o.Payments {
		sum += p.Amount
	}
	return sum
}

// RemainingBalance is total price minus payments.
func (o Order) RemainingBalance() int64 {
	return o.TotalPrice - o.TotalPaid()
}

// Item returns the item with the given id.
func (o *Order) Item(id int64) (*Item, error) {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i], nil
		}
	}
	return nil, ErrItemNotFound
}

// CheckCancellable rejects orders that are cancelled or settled.
func (o Order) CheckCancellable() error {
	switch o.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusPaid:
		return ErrOrderSettled
	}
	return nil
}

// Cancel marks the order cancelled and the visit missed.
func (o *Order) Cancel(now time.Time) error {
	if err := o.CheckCancellable(); err != nil {
		return err
	}
	o.Status = StatusCancelled
	o.Attendance = AttendanceNoShow
	o.UpdatedAt = now
	return nil
}

// CheckModifiable rejects changes to cancelled or settled orders.
func (o Order) CheckModifiable() error {
	if o.Status == StatusCancelled || o.Status == StatusPaid {
		return ErrNotModifiable
	}
	return nil
}

// StatusAfterPayment derives the status once amount is added to paid. The
// result only moves forward: unpaid, then partially paid, then paid.
func StatusAfterPayment(current Status, total, paid, amount int64) Status {
	switch {
	case paid+amount >= total:
		return StatusPaid
	case paid+amount > 0:
		return StatusPartiallyPaid
	default:
		return current
	}
}

// ApplyPayment validates and records a payment, updating the status.
func (o *Order) ApplyPayment(p Payment, now time.Time) (*Payment, error) {
	if o.Status == StatusPaid || o.Status == StatusCancelled {
		return nil, ErrNotPayable
	}
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	paid := o.TotalPaid()
	if p.Amount > o.TotalPrice-paid {
		return nil, ErrOverpayment
	}
	if p.Type == "" {
		p.Type = PaymentAdditional
		if len(o.Payments) == 0 {
			p.Type = PaymentDown
		}
	}
	p.OrderID = o.ID
	p.CreatedAt = now
	o.Status = StatusAfterPayment(o.Status, o.TotalPrice, paid, p.Amount)
	o.UpdatedAt = now
	o.Payments = append(o.Payments, p)
	return &o.Payments[len(o.Payments)-1], nil
}

// SetAttendance records attendance on a non-cancelled order.
func (o *Order) SetAttendance(a Attendance, now time.Time) error {
	if o.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	o.Attendance = a
	o.UpdatedAt = now
	return nil
}
