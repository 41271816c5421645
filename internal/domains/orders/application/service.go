package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	catalogports "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	scheduleports "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/shared/retry"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service is the order engine. Every mutation runs in one store transaction
// and is retried on id collisions and serialization conflicts.
type Service struct {
	store          ports.Store
	idempotency    ports.IdempotencyStore
	paymentMethods ports.PaymentMethods
	patients       ports.Patients
	notifier       scheduleports.QuotaNotifier
	retry          retry.Policy
	now            func() time.Time
	newID          func(time.Time) (string, error)
}

// Option configures the service.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key replay on CreateOrder.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithQuotaNotifier publishes quota changes after commit.
func WithQuotaNotifier(n scheduleports.QuotaNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRetryPolicy overrides the transaction retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Service) { s.retry = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides order id generation.
func WithIDGenerator(gen func(time.Time) (string, error)) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func NewService(store ports.Store, paymentMethods ports.PaymentMethods, patients ports.Patients, opts ...Option) *Service {
	s := &Service{
		store:          store,
		paymentMethods: paymentMethods,
		patients:       patients,
		retry:          retry.Default,
		now:            time.Now,
		newID:          domain.NewOrderID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder books a service on a schedule, reserving quota and consuming stock.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if input.BusinessAreaID <= 0 || input.ServiceID <= 0 || input.ScheduleID <= 0 {
		return nil, fmt.Errorf("%w: business_area_id, service_id and schedule_id are required", ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		var err error
		if fingerprint, err = FingerprintCreateOrder(input); err != nil {
			return nil, err
		}
		if order, err := s.replay(ctx, key, fingerprint); order != nil || err != nil {
			return order, err
		}
	}

	var (
		order   *domain.Order
		touched []scheduledomain.Schedule
	)
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		touched = touched[:0]
		schedule, err := tx.GetSchedule(ctx, input.ScheduleID)
		if err != nil {
			return err
		}
		if schedule.BusinessAreaID != input.BusinessAreaID {
			return domain.ErrAreaMismatch
		}
		if input.Quantity > schedule.RemainingQuota {
			return scheduledomain.ErrQuotaExhausted
		}
		service, err := tx.GetService(ctx, input.ServiceID)
		if err != nil {
			return err
		}
		if !service.IsActive {
			return fmt.Errorf("service %d is inactive: %w", service.ID, catalogports.ErrNotFound)
		}
		products := make(map[catalogdomain.ProductKey]catalogdomain.Product, len(service.Products))
		slotKey := catalogdomain.ProductKey{ID: schedule.ProductID, BusinessAreaID: schedule.BusinessAreaID}
		var (
			units   int64
			matched bool
		)
		for _, line := range service.Products {
			product, err := tx.GetProduct(ctx, line.ProductKey())
			if err != nil {
				return err
			}
			products[product.Key()] = *product
			if !product.IsGood() {
				units += input.Quantity * line.Quantity
				matched = matched || product.Key() == slotKey
			}
		}
		if units == 0 {
			return ErrServiceNotBookable
		}
		// The slot must belong to one of the service's bookable products.
		if !matched {
			return ErrScheduleMismatch
		}
		reserved, err := tx.ReserveQuota(ctx, schedule.ID, units)
		if err != nil {
			return err
		}
		touched = append(touched, reserved)

		now := s.now()
		id, err := s.newID(now)
		if err != nil {
			return err
		}
		total := input.Quantity * service.Price
		order = &domain.Order{
			ID:             id,
			BusinessAreaID: input.BusinessAreaID,
			TotalPrice:     total,
			DP:             domain.DownPayment(input.Quantity, total),
			Status:         domain.StatusUnpaid,
			Attendance:     domain.AttendancePending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		serviceID := service.ID
		for _, line := range service.Products {
			product := products[line.ProductKey()]
			item := domain.Item{
				OrderID:               id,
				ProductID:             product.ID,
				ProductBusinessAreaID: product.BusinessAreaID,
				Quantity:              input.Quantity * line.Quantity,
				UnitUsed:              line.UnitType,
				Price:                 product.TariffFor(line.UnitType),
				ServiceID:             &serviceID,
				ServicePrice:          service.Price,
				ServiceQuantity:       input.Quantity,
			}
			if !product.IsGood() {
				scheduleID := schedule.ID
				item.ScheduleID = &scheduleID
			}
			order.Items = append(order.Items, item)
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		for _, change := range stockChanges(order.Items, products) {
			if err := tx.AdjustStock(ctx, change.key, -change.units); err != nil {
				return err
			}
		}
		if key != "" && s.idempotency != nil {
			return tx.ClaimIdempotencyKey(ctx, ports.IdempotencyRecord{
				Key:         key,
				RequestHash: fingerprint,
				OrderID:     id,
				CreatedAt:   now,
			})
		}
		return nil
	})
	if errors.Is(err, ports.ErrIdempotencyKeyTaken) {
		if order, err := s.replay(ctx, key, fingerprint); order != nil || err != nil {
			return order, err
		}
	}
	if err != nil {
		return nil, mapError(err)
	}
	s.notify(ctx, touched)
	return order, nil
}

func (s *Service) replay(ctx context.Context, key, fingerprint string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil || record == nil {
		return nil, err
	}
	if record.RequestHash != fingerprint {
		return nil, ErrIdempotencyReuse
	}
	return s.GetOrder(ctx, record.OrderID)
}

// CancelOrder cancels the order, returning its quota and stock.
func (s *Service) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	existing, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := existing.CheckCancellable(); err != nil {
		return nil, mapError(err)
	}

	var touched []scheduledomain.Schedule
	err = s.inTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		touched = touched[:0]
		order, err := tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := order.Cancel(s.now()); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		for _, release := range quotaReleases(order.Items) {
			released, err := tx.ReleaseQuota(ctx, release.scheduleID, release.units)
			if err != nil {
				return err
			}
			touched = append(touched, released)
		}
		products, err := loadProducts(ctx, tx, order.Items)
		if err != nil {
			return err
		}
		for _, change := range stockChanges(order.Items, products) {
			if err := tx.AdjustStock(ctx, change.key, change.units); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.notify(ctx, touched)
	return s.GetOrder(ctx, id)
}

// RecordPayment appends a payment and advances the payment status.
func (s *Service) RecordPayment(ctx context.Context, input ports.PaymentInput) (*domain.Order, error) {
	if strings.TrimSpace(input.OrderID) == "" || input.PaymentMethodID <= 0 {
		return nil, fmt.Errorf("%w: order id and payment_method_id are required", ErrInvalidInput)
	}
	if input.Amount <= 0 {
		return nil, mapError(domain.ErrInvalidAmount)
	}
	paymentType, err := domain.ParsePaymentType(input.Type)
	if err != nil {
		return nil, mapError(err)
	}
	if s.paymentMethods != nil {
		method, err := s.paymentMethods.Get(ctx, input.PaymentMethodID)
		if err != nil {
			return nil, mapError(err)
		}
		if !method.IsActive {
			return nil, mapError(ErrInactiveMethod)
		}
	}

	err = s.inTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		order, err := tx.LockOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		payment, err := order.ApplyPayment(domain.Payment{
			PaymentMethodID: input.PaymentMethodID,
			Amount:          input.Amount,
			Type:            paymentType,
		}, s.now())
		if err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		return tx.InsertPayment(ctx, payment)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return s.GetOrder(ctx, input.OrderID)
}

// RescheduleItem moves a scheduled item to another slot of the same product.
func (s *Service) RescheduleItem(ctx context.Context, input ports.RescheduleInput) (*domain.Item, error) {
	if strings.TrimSpace(input.OrderID) == "" || input.ItemID <= 0 || input.SelectedScheduleID <= 0 {
		return nil, fmt.Errorf("%w: order id, item id and selected_schedule_id are required", ErrInvalidInput)
	}

	var (
		moved   domain.Item
		touched []scheduledomain.Schedule
	)
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		touched = touched[:0]
		order, err := tx.LockOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == domain.StatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		item, err := order.Item(input.ItemID)
		if err != nil {
			return err
		}
		if item.ScheduleID == nil {
			return ErrNotScheduled
		}
		source := *item.ScheduleID
		if source == input.SelectedScheduleID {
			return ErrSameSchedule
		}
		target, err := tx.GetSchedule(ctx, input.SelectedScheduleID)
		if err != nil {
			return err
		}
		if target.ProductID != item.ProductID || target.BusinessAreaID != item.ProductBusinessAreaID {
			return ErrScheduleMismatch
		}
		if item.Quantity > target.RemainingQuota {
			return scheduledomain.ErrQuotaExhausted
		}
		// Touch the two schedule rows in id order so concurrent reschedules
		// between the same pair cannot deadlock.
		steps := []func() error{
			func() error {
				reserved, err := tx.ReserveQuota(ctx, target.ID, item.Quantity)
				if err != nil {
					return err
				}
				touched = append(touched, reserved)
				return nil
			},
			func() error {
				released, err := tx.ReleaseQuota(ctx, source, item.Quantity)
				if err != nil {
					return err
				}
				touched = append(touched, released)
				return nil
			},
		}
		if source < target.ID {
			steps[0], steps[1] = steps[1], steps[0]
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		targetID := target.ID
		item.ScheduleID = &targetID
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		order.UpdatedAt = s.now()
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		moved = *item
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.notify(ctx, touched)
	return &moved, nil
}

// AddItem appends a product line to an open order.
func (s *Service) AddItem(ctx context.Context, input ports.AddItemInput) (*domain.Order, error) {
	if strings.TrimSpace(input.OrderID) == "" || input.BusinessAreaID <= 0 || input.ProductID <= 0 {
		return nil, fmt.Errorf("%w: order id, business_area_id and product_id are required", ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	unit, err := catalogdomain.ParseUnitType(string(input.UnitType))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if input.ScheduleID != nil && *input.ScheduleID <= 0 {
		return nil, fmt.Errorf("%w: schedule_id must be positive", ErrInvalidInput)
	}

	var touched []scheduledomain.Schedule
	err = s.inTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		touched = touched[:0]
		order, err := tx.LockOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := order.CheckModifiable(); err != nil {
			return err
		}
		if order.BusinessAreaID != input.BusinessAreaID {
			return domain.ErrAreaMismatch
		}
		key := catalogdomain.ProductKey{ID: input.ProductID, BusinessAreaID: input.BusinessAreaID}
		product, err := tx.GetProduct(ctx, key)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return fmt.Errorf("product %s is inactive: %w", key, catalogports.ErrNotFound)
		}
		item := domain.Item{
			OrderID:               order.ID,
			ProductID:             product.ID,
			ProductBusinessAreaID: product.BusinessAreaID,
			Quantity:              input.Quantity,
			UnitUsed:              unit,
			Price:                 product.TariffFor(unit),
		}
		switch {
		case product.IsGood():
			if input.ScheduleID != nil {
				return ErrScheduleNotAllowed
			}
			if err := tx.AdjustStock(ctx, key, -product.ToSmallUnits(unit, input.Quantity)); err != nil {
				return err
			}
		case input.ScheduleID != nil:
			schedule, err := tx.GetSchedule(ctx, *input.ScheduleID)
			if err != nil {
				return err
			}
			if schedule.ProductID != product.ID || schedule.BusinessAreaID != product.BusinessAreaID {
				return ErrScheduleMismatch
			}
			reserved, err := tx.ReserveQuota(ctx, schedule.ID, input.Quantity)
			if err != nil {
				return err
			}
			touched = append(touched, reserved)
			scheduleID := schedule.ID
			item.ScheduleID = &scheduleID
		}
		if err := tx.InsertItem(ctx, &item); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
		order.TotalPrice += item.Subtotal()
		order.UpdatedAt = s.now()
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.notify(ctx, touched)
	return s.GetOrder(ctx, input.OrderID)
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ListOrders returns orders newest first.
func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return orders, nil
}

func (s *Service) UpdateAttendance(ctx context.Context, id string, attendance domain.Attendance) (*domain.Order, error) {
	parsed, err := domain.ParseAttendance(string(attendance))
	if err != nil {
		return nil, mapError(err)
	}
	err = s.inTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		order, err := tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := order.SetAttendance(parsed, s.now()); err != nil {
			return err
		}
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return s.GetOrder(ctx, id)
}

// AssignItem records which patient receives an item.
func (s *Service) AssignItem(ctx context.Context, input ports.AssignInput) (*domain.Order, error) {
	if strings.TrimSpace(input.OrderID) == "" || input.ItemID <= 0 || input.PatientID <= 0 {
		return nil, fmt.Errorf("%w: order id, item id and patient_id are required", ErrInvalidInput)
	}
	var patientArea int64
	if s.patients != nil {
		patient, err := s.patients.Get(ctx, input.PatientID)
		if err != nil {
			return nil, mapError(err)
		}
		patientArea = patient.BusinessAreaID
	}
	err := s.inTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		order, err := tx.LockOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == domain.StatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		if patientArea != 0 && patientArea != order.BusinessAreaID {
			return domain.ErrAreaMismatch
		}
		item, err := order.Item(input.ItemID)
		if err != nil {
			return err
		}
		patientID := input.PatientID
		item.IsAssigned = true
		item.PatientID = &patientID
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return s.GetOrder(ctx, input.OrderID)
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return retry.Do(ctx, s.retry, isRetryable, func(ctx context.Context) error {
		return s.store.WithinTx(ctx, fn)
	})
}

func isRetryable(err error) bool {
	return errors.Is(err, ports.ErrTxConflict) || errors.Is(err, ports.ErrDuplicateOrderID)
}

func (s *Service) notify(ctx context.Context, schedules []scheduledomain.Schedule) {
	if s.notifier == nil || len(schedules) == 0 {
		return
	}
	s.notifier.QuotaChanged(ctx, schedules...)
}

type quotaRelease struct {
	scheduleID int64
	units      int64
}

// quotaReleases sums item quantities per schedule, ordered by schedule id.
func quotaReleases(items []domain.Item) []quotaRelease {
	sums := map[int64]int64{}
	for _, item := range items {
		if item.ScheduleID != nil {
			sums[*item.ScheduleID] += item.Quantity
		}
	}
	out := make([]quotaRelease, 0, len(sums))
	for id, units := range sums {
		out = append(out, quotaRelease{scheduleID: id, units: units})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].scheduleID < out[j].scheduleID })
	return out
}

type stockChange struct {
	key   catalogdomain.ProductKey
	units int64
}

// stockChanges sums small units per GOOD product, ordered by product key.
func stockChanges(items []domain.Item, products map[catalogdomain.ProductKey]catalogdomain.Product) []stockChange {
	sums := map[catalogdomain.ProductKey]int64{}
	for _, item := range items {
		product, ok := products[item.ProductKey()]
		if !ok || !product.IsGood() {
			continue
		}
		sums[item.ProductKey()] += product.ToSmallUnits(item.UnitUsed, item.Quantity)
	}
	out := make([]stockChange, 0, len(sums))
	for key, units := range sums {
		out = append(out, stockChange{key: key, units: units})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].key.BusinessAreaID != out[j].key.BusinessAreaID {
			return out[i].key.BusinessAreaID < out[j].key.BusinessAreaID
		}
		return out[i].key.ID < out[j].key.ID
	})
	return out
}

func loadProducts(ctx context.Context, tx ports.Tx, items []domain.Item) (map[catalogdomain.ProductKey]catalogdomain.Product, error) {
	products := make(map[catalogdomain.ProductKey]catalogdomain.Product, len(items))
	for _, item := range items {
		if _, ok := products[item.ProductKey()]; ok {
			continue
		}
		product, err := tx.GetProduct(ctx, item.ProductKey())
		if err != nil {
			return nil, err
		}
		products[item.ProductKey()] = *product
	}
	return products, nil
}

var _ ports.Service = (*Service)(nil)
