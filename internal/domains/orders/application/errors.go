package application

import (
	"errors"
	"fmt"

	catalogports "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	masterports "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	scheduleports "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
)

var (
	// ErrInvalidInput signals malformed input or a reference that does not fit the order.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrInvalidState signals the order's status forbids the operation.
	ErrInvalidState = errors.New("order state does not allow this operation")
	// ErrNotFound signals the order or a record it references is absent.
	ErrNotFound = errors.New("order resource not found")
	// ErrConflict signals a concurrent writer won a contended resource.
	ErrConflict = errors.New("order conflict")
	// ErrConsistency signals stored quota would break its invariant; the transaction is rolled back.
	ErrConsistency = errors.New("schedule quota consistency violation")

	ErrSlotTaken          = fmt.Errorf("%w: slot taken by someone else", ErrConflict)
	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", ErrConflict)
	ErrIdempotencyReuse   = fmt.Errorf("%w: %w", ErrConflict, ports.ErrIdempotencyConflict)
	ErrServiceNotBookable = errors.New("service bundles no schedulable product")
	ErrInactiveMethod     = errors.New("payment method is inactive")
	ErrNotScheduled       = errors.New("order item is not bound to a schedule")
	ErrSameSchedule       = errors.New("target schedule equals the current schedule")
	ErrScheduleMismatch   = errors.New("schedule does not match the item's product or business area")
	ErrScheduleNotAllowed = errors.New("goods cannot be bound to a schedule")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrConsistency):
		return err
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidAttendance),
		errors.Is(err, domain.ErrInvalidPaymentType),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrOverpayment),
		errors.Is(err, domain.ErrAreaMismatch),
		errors.Is(err, ErrServiceNotBookable),
		errors.Is(err, ErrInactiveMethod),
		errors.Is(err, ErrNotScheduled),
		errors.Is(err, ErrSameSchedule),
		errors.Is(err, ErrScheduleMismatch),
		errors.Is(err, ErrScheduleNotAllowed):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrOrderSettled),
		errors.Is(err, domain.ErrNotPayable),
		errors.Is(err, domain.ErrNotModifiable):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	case errors.Is(err, ports.ErrNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, scheduleports.ErrNotFound),
		errors.Is(err, catalogports.ErrNotFound),
		errors.Is(err, masterports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, scheduledomain.ErrQuotaExhausted):
		return fmt.Errorf("%w: %w", ErrSlotTaken, err)
	case errors.Is(err, catalogports.ErrInsufficientStock):
		return fmt.Errorf("%w: %w", ErrInsufficientStock, err)
	case errors.Is(err, scheduledomain.ErrQuotaOverflow):
		return fmt.Errorf("%w: %w", ErrConsistency, err)
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, ports.ErrDuplicateOrderID),
		errors.Is(err, ports.ErrTxConflict),
		errors.Is(err, ports.ErrIdempotencyKeyTaken):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
