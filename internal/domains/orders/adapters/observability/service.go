package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/application"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
)

const tracerName = "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/adapters/observability/service"

// Service decorates the order engine with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	attrs := []attribute.KeyValue{
		attribute.Int64("business_area.id", input.BusinessAreaID),
		attribute.Int64("service.id", input.ServiceID),
		attribute.Int64("schedule.id", input.ScheduleID),
		attribute.Int64("order.quantity", input.Quantity),
	}
	ctx, span := s.startSpan(ctx, "Service.CreateOrder", attrs...)
	defer span.End()

	s.logInfo(ctx, "creating order",
		slog.Int64("schedule.id", input.ScheduleID),
		slog.Int64("service.id", input.ServiceID),
		slog.Int64("quantity", input.Quantity),
		slog.Bool("idempotent", input.IdempotencyKey != ""))
	order, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		s.metrics.recordConflict(ctx, err, "create")
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.Int64("schedule.id", input.ScheduleID))
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.metrics.recordCreated(ctx, input.BusinessAreaID)
	s.logInfo(ctx, "order created", slog.String("order.id", order.ID), slog.Int64("total_price", order.TotalPrice), slog.Int64("dp", order.DP))
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.CancelOrder", attribute.String("order.id", id))
	defer span.End()

	s.logInfo(ctx, "cancelling order", slog.String("order.id", id))
	order, err := s.inner.CancelOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.String("order.id", id))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.String("order.id", id))
	return order, nil
}

func (s *Service) RecordPayment(ctx context.Context, input ports.PaymentInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.RecordPayment",
		attribute.String("order.id", input.OrderID),
		attribute.Int64("payment.amount", input.Amount))
	defer span.End()

	s.logInfo(ctx, "recording payment", slog.String("order.id", input.OrderID), slog.Int64("amount", input.Amount))
	order, err := s.inner.RecordPayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record payment", slog.String("order.id", input.OrderID))
	}
	s.metrics.recordPayment(ctx, order.Status, input.Amount)
	s.logInfo(ctx, "payment recorded", slog.String("order.id", order.ID), slog.String("status", string(order.Status)))
	return order, nil
}

func (s *Service) RescheduleItem(ctx context.Context, input ports.RescheduleInput) (*domain.Item, error) {
	ctx, span := s.startSpan(ctx, "Service.RescheduleItem",
		attribute.String("order.id", input.OrderID),
		attribute.Int64("item.id", input.ItemID),
		attribute.Int64("schedule.id", input.SelectedScheduleID))
	defer span.End()

	s.logInfo(ctx, "rescheduling item", slog.String("order.id", input.OrderID), slog.Int64("item.id", input.ItemID))
	item, err := s.inner.RescheduleItem(ctx, input)
	if err != nil {
		s.metrics.recordConflict(ctx, err, "reschedule")
		return nil, s.handleError(ctx, span, err, "failed to reschedule item", slog.Int64("item.id", input.ItemID))
	}
	s.logInfo(ctx, "item rescheduled", slog.Int64("item.id", item.ID), slog.Int64("schedule.id", input.SelectedScheduleID))
	return item, nil
}

func (s *Service) AddItem(ctx context.Context, input ports.AddItemInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.AddItem",
		attribute.String("order.id", input.OrderID),
		attribute.Int64("product.id", input.ProductID))
	defer span.End()

	s.logInfo(ctx, "adding item", slog.String("order.id", input.OrderID), slog.Int64("product.id", input.ProductID))
	order, err := s.inner.AddItem(ctx, input)
	if err != nil {
		s.metrics.recordConflict(ctx, err, "add_item")
		return nil, s.handleError(ctx, span, err, "failed to add item", slog.String("order.id", input.OrderID))
	}
	s.logInfo(ctx, "item added", slog.String("order.id", order.ID), slog.Int64("total_price", order.TotalPrice))
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", id))
	defer span.End()

	order, err := s.inner.GetOrder(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.String("order.id", id))
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders", attribute.Int64("business_area.id", filter.BusinessAreaID))
	defer span.End()

	orders, err := s.inner.ListOrders(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.result.count", len(orders)))
	return orders, nil
}

func (s *Service) UpdateAttendance(ctx context.Context, id string, attendance domain.Attendance) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateAttendance", attribute.String("order.id", id))
	defer span.End()

	s.logInfo(ctx, "updating attendance", slog.String("order.id", id), slog.String("attendance", string(attendance)))
	order, err := s.inner.UpdateAttendance(ctx, id, attendance)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update attendance", slog.String("order.id", id))
	}
	return order, nil
}

func (s *Service) AssignItem(ctx context.Context, input ports.AssignInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.AssignItem",
		attribute.String("order.id", input.OrderID),
		attribute.Int64("item.id", input.ItemID))
	defer span.End()

	s.logInfo(ctx, "assigning item", slog.String("order.id", input.OrderID), slog.Int64("patient.id", input.PatientID))
	order, err := s.inner.AssignItem(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to assign item", slog.Int64("item.id", input.ItemID))
	}
	return order, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError logs caller mistakes at warn and everything else at error.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger == nil {
		return err
	}
	level := slog.LevelError
	if errors.Is(err, application.ErrInvalidInput) ||
		errors.Is(err, application.ErrInvalidState) ||
		errors.Is(err, application.ErrNotFound) ||
		errors.Is(err, application.ErrConflict) {
		level = slog.LevelWarn
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated    metric.Int64Counter
	ordersCancelled  metric.Int64Counter
	paymentsRecorded metric.Int64Counter
	paymentAmount    metric.Int64Counter
	conflicts        metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	cancelled, _ := m.Int64Counter("orders.service.cancelled", metric.WithDescription("Number of orders cancelled"))
	payments, _ := m.Int64Counter("orders.service.payments", metric.WithDescription("Number of payments recorded"))
	amount, _ := m.Int64Counter("orders.service.payment_amount", metric.WithDescription("Sum of recorded payments"), metric.WithUnit("IDR"))
	conflicts, _ := m.Int64Counter("orders.service.conflicts", metric.WithDescription("Quota, stock and idempotency conflicts"))
	return serviceMetrics{
		ordersCreated:    created,
		ordersCancelled:  cancelled,
		paymentsRecorded: payments,
		paymentAmount:    amount,
		conflicts:        conflicts,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, areaID int64) {
	addCounter(ctx, m.ordersCreated, 1, attribute.Int64("business_area.id", areaID))
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	addCounter(ctx, m.ordersCancelled, 1)
}

func (m serviceMetrics) recordPayment(ctx context.Context, status domain.Status, amount int64) {
	addCounter(ctx, m.paymentsRecorded, 1, attribute.String("order.status", string(status)))
	addCounter(ctx, m.paymentAmount, amount)
}

func (m serviceMetrics) recordConflict(ctx context.Context, err error, op string) {
	var kind string
	switch {
	case errors.Is(err, application.ErrSlotTaken):
		kind = "slot_taken"
	case errors.Is(err, application.ErrInsufficientStock):
		kind = "stock"
	case errors.Is(err, application.ErrConflict):
		kind = "other"
	default:
		return
	}
	addCounter(ctx, m.conflicts, 1, attribute.String("operation", op), attribute.String("kind", kind))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
