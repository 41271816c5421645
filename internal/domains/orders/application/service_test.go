package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	mastermemory "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/adapters/memory"
	masterdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/adapters/memory"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	schedulememory "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/memory"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
	"github.com/ignasiusberneo/clinic-admin/internal/shared/retry"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []scheduledomain.Schedule
}

func (n *recordingNotifier) QuotaChanged(_ context.Context, schedules ...scheduledomain.Schedule) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, schedules...)
}

type engine struct {
	svc       *Service
	catalog   *catalogmemory.Repository
	schedules *schedulememory.Repository
	notifier  *recordingNotifier

	areaID      int64
	otherAreaID int64
	cash        int64
	retiredCash int64
	therapy     catalogdomain.Product
	gel         catalogdomain.Product
	service     catalogdomain.Service
	slot        scheduledomain.Schedule
	otherSlot   scheduledomain.Schedule
	patientID   int64
	outsiderID  int64
}

func newEngine(t *testing.T, opts ...Option) *engine {
	t.Helper()
	ctx := context.Background()
	db := memdb.New()
	master := mastermemory.NewRepositories(db)
	catalog := catalogmemory.NewRepository(db)
	schedules := schedulememory.NewRepository(db)
	store := memory.NewStore(db)
	e := &engine{catalog: catalog, schedules: schedules, notifier: &recordingNotifier{}}

	area, err := master.BusinessAreas.Save(ctx, &masterdomain.BusinessArea{Name: "Klinik A", Timezone: "Asia/Jakarta", IsActive: true})
	require.NoError(t, err)
	other, err := master.BusinessAreas.Save(ctx, &masterdomain.BusinessArea{Name: "Klinik B", Timezone: "Asia/Jakarta", IsActive: true})
	require.NoError(t, err)
	e.areaID, e.otherAreaID = area.ID, other.ID

	cash, err := master.PaymentMethods.Save(ctx, &masterdomain.PaymentMethod{Name: "Tunai", IsActive: true})
	require.NoError(t, err)
	retired, err := master.PaymentMethods.Save(ctx, &masterdomain.PaymentMethod{Name: "Cek", IsActive: false})
	require.NoError(t, err)
	e.cash, e.retiredCash = cash.ID, retired.ID

	patient, err := master.Patients.Save(ctx, &masterdomain.Patient{Name: "Budi", BusinessAreaID: area.ID})
	require.NoError(t, err)
	outsider, err := master.Patients.Save(ctx, &masterdomain.Patient{Name: "Sari", BusinessAreaID: other.ID})
	require.NoError(t, err)
	e.patientID, e.outsiderID = patient.ID, outsider.ID

	therapy, err := catalog.SaveProduct(ctx, &catalogdomain.Product{
		BusinessAreaID: area.ID, Name: "Terapi Oksigen", Type: catalogdomain.ProductTypeService,
		Tariff: 100000, SmallUnitTariff: 100000, UnitConversion: 1, IsActive: true,
	})
	require.NoError(t, err)
	gel, err := catalog.SaveProduct(ctx, &catalogdomain.Product{
		BusinessAreaID: area.ID, Name: "Gel", Type: catalogdomain.ProductTypeGood,
		LargeUnit: "box", SmallUnit: "sachet", Tariff: 50000, SmallUnitTariff: 5000, UnitConversion: 10, IsActive: true,
	})
	require.NoError(t, err)
	e.therapy, e.gel = *therapy, *gel
	_, err = catalog.AdjustStock(ctx, gel.Key(), 100)
	require.NoError(t, err)

	service, err := catalog.SaveService(ctx, &catalogdomain.Service{
		Name: "Paket Terapi", Price: 100000, IsActive: true,
		Products: []catalogdomain.ServiceProduct{
			{ProductID: therapy.ID, ProductBusinessAreaID: area.ID, Quantity: 1, UnitType: catalogdomain.UnitLarge},
			{ProductID: gel.ID, ProductBusinessAreaID: area.ID, Quantity: 1, UnitType: catalogdomain.UnitSmall},
		},
	})
	require.NoError(t, err)
	e.service = *service

	start := time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)
	created, err := schedules.InsertSchedules(ctx, []scheduledomain.Schedule{
		{ProductID: therapy.ID, BusinessAreaID: area.ID, StartTime: start, EndTime: start.Add(time.Hour), MaxQuota: 3, RemainingQuota: 3},
		{ProductID: therapy.ID, BusinessAreaID: area.ID, StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour), MaxQuota: 2, RemainingQuota: 2},
	})
	require.NoError(t, err)
	e.slot, e.otherSlot = created[0], created[1]

	opts = append([]Option{
		WithIdempotencyStore(store),
		WithQuotaNotifier(e.notifier),
		WithRetryPolicy(retry.Policy{Attempts: 3, Backoff: time.Millisecond}),
	}, opts...)
	e.svc = NewService(store, master.PaymentMethods, master.Patients, opts...)
	return e
}

func (e *engine) remaining(t *testing.T, id int64) int64 {
	t.Helper()
	s, err := e.schedules.GetSchedule(context.Background(), id)
	require.NoError(t, err)
	return s.RemainingQuota
}

func (e *engine) stock(t *testing.T) int64 {
	t.Helper()
	s, err := e.catalog.GetStock(context.Background(), e.gel.Key())
	require.NoError(t, err)
	return s.Quantity
}

func (e *engine) book(t *testing.T, qty int64) *domain.Order {
	t.Helper()
	order, err := e.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: e.slot.ID, Quantity: qty,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder_ReservesQuotaAndStock(t *testing.T) {
	e := newEngine(t)

	order := e.book(t, 2)

	assert.Regexp(t, `^ORD-\d+-\d{5}$`, order.ID)
	assert.EqualValues(t, 200000, order.TotalPrice)
	assert.EqualValues(t, 20000, order.DP)
	assert.Equal(t, domain.StatusUnpaid, order.Status)
	assert.Equal(t, domain.AttendancePending, order.Attendance)
	require.Len(t, order.Items, 2)

	therapy, gel := order.Items[0], order.Items[1]
	require.NotNil(t, therapy.ScheduleID)
	assert.Equal(t, e.slot.ID, *therapy.ScheduleID)
	assert.EqualValues(t, 2, therapy.Quantity)
	assert.EqualValues(t, 100000, therapy.Price)
	assert.EqualValues(t, 2, therapy.ServiceQuantity)
	assert.Nil(t, gel.ScheduleID)
	assert.Equal(t, catalogdomain.UnitSmall, gel.UnitUsed)
	assert.EqualValues(t, 5000, gel.Price)

	assert.EqualValues(t, 1, e.remaining(t, e.slot.ID))
	assert.EqualValues(t, 98, e.stock(t))
	require.Len(t, e.notifier.events, 1)
	assert.EqualValues(t, 1, e.notifier.events[0].RemainingQuota)
}

func TestCreateOrder_Validation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	_, err := e.svc.CreateOrder(ctx, ports.CreateOrderInput{BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: e.slot.ID})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.CreateOrder(ctx, ports.CreateOrderInput{ServiceID: e.service.ID, ScheduleID: e.slot.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.CreateOrder(ctx, ports.CreateOrderInput{BusinessAreaID: e.otherAreaID, ServiceID: e.service.ID, ScheduleID: e.slot.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrAreaMismatch)

	_, err = e.svc.CreateOrder(ctx, ports.CreateOrderInput{BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: 9999, Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.svc.CreateOrder(ctx, ports.CreateOrderInput{BusinessAreaID: e.areaID, ServiceID: 9999, ScheduleID: e.slot.ID, Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrder_SlotTaken(t *testing.T) {
	e := newEngine(t)

	_, err := e.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: e.slot.ID, Quantity: 4,
	})
	require.ErrorIs(t, err, ErrSlotTaken)
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualValues(t, 3, e.remaining(t, e.slot.ID))
}

func TestCreateOrder_InsufficientStockRollsBackQuota(t *testing.T) {
	e := newEngine(t)
	_, err := e.catalog.AdjustStock(context.Background(), e.gel.Key(), -99)
	require.NoError(t, err)

	_, err = e.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: e.slot.ID, Quantity: 2,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.EqualValues(t, 3, e.remaining(t, e.slot.ID))
	assert.EqualValues(t, 1, e.stock(t))
	assert.Empty(t, e.notifier.events)
}

func TestCreateOrder_ServiceWithoutSchedulableProduct(t *testing.T) {
	e := newEngine(t)
	goodsOnly, err := e.catalog.SaveService(context.Background(), &catalogdomain.Service{
		Name: "Paket Gel", Price: 10000, IsActive: true,
		Products: []catalogdomain.ServiceProduct{{ProductID: e.gel.ID, ProductBusinessAreaID: e.areaID, Quantity: 1, UnitType: catalogdomain.UnitSmall}},
	})
	require.NoError(t, err)

	_, err = e.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		BusinessAreaID: e.areaID, ServiceID: goodsOnly.ID, ScheduleID: e.slot.ID, Quantity: 1,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ErrServiceNotBookable)
}

func TestCreateOrder_RejectsSlotOfAnotherProduct(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	consult, err := e.catalog.SaveProduct(ctx, &catalogdomain.Product{
		BusinessAreaID: e.areaID, Name: "Konsultasi", Type: catalogdomain.ProductTypeService,
		Tariff: 75000, SmallUnitTariff: 75000, UnitConversion: 1, IsActive: true,
	})
	require.NoError(t, err)
	start := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	created, err := e.schedules.InsertSchedules(ctx, []scheduledomain.Schedule{{
		ProductID: consult.ID, BusinessAreaID: e.areaID, StartTime: start, EndTime: start.Add(time.Hour), MaxQuota: 3, RemainingQuota: 3,
	}})
	require.NoError(t, err)

	_, err = e.svc.CreateOrder(ctx, ports.CreateOrderInput{
		BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: created[0].ID, Quantity: 1,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ErrScheduleMismatch)
	assert.EqualValues(t, 3, e.remaining(t, created[0].ID))
	assert.EqualValues(t, 100, e.stock(t))
	assert.Empty(t, e.notifier.events)
}

func TestCreateOrder_RetriesOnDuplicateID(t *testing.T) {
	ids := []string{"ORD-1-00001", "ORD-1-00001", "ORD-1-00002"}
	var mu sync.Mutex
	gen := func(time.Time) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}
	e := newEngine(t, WithIDGenerator(gen))

	first := e.book(t, 1)
	second := e.book(t, 1)

	assert.Equal(t, "ORD-1-00001", first.ID)
	assert.Equal(t, "ORD-1-00002", second.ID)
	assert.EqualValues(t, 1, e.remaining(t, e.slot.ID))
}

func TestCreateOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	e := newEngine(t, WithIDGenerator(func(time.Time) (string, error) { return "ORD-1-00001", nil }))
	e.book(t, 1)

	_, err := e.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
		BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: e.slot.ID, Quantity: 1,
	})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ports.ErrDuplicateOrderID)
	assert.EqualValues(t, 2, e.remaining(t, e.slot.ID))
}

func TestCreateOrder_IdempotencyKeyReplays(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	input := ports.CreateOrderInput{
		BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: e.slot.ID, Quantity: 1, IdempotencyKey: "req-1",
	}

	first, err := e.svc.CreateOrder(ctx, input)
	require.NoError(t, err)
	replayed, err := e.svc.CreateOrder(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replayed.ID)
	assert.EqualValues(t, 2, e.remaining(t, e.slot.ID))

	input.Quantity = 2
	_, err = e.svc.CreateOrder(ctx, input)
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestCreateOrder_ConcurrentBookingsNeverOversell(t *testing.T) {
	e := newEngine(t)
	const attempts = 10

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		taken     int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.CreateOrder(context.Background(), ports.CreateOrderInput{
				BusinessAreaID: e.areaID, ServiceID: e.service.ID, ScheduleID: e.slot.ID, Quantity: 1,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrSlotTaken):
				taken++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, attempts-3, taken)
	assert.Zero(t, e.remaining(t, e.slot.ID))
}

func TestCancelOrder_RestoresQuotaAndStock(t *testing.T) {
	e := newEngine(t)
	order := e.book(t, 2)

	cancelled, err := e.svc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, domain.AttendanceNoShow, cancelled.Attendance)
	assert.EqualValues(t, 3, e.remaining(t, e.slot.ID))
	assert.EqualValues(t, 100, e.stock(t))

	_, err = e.svc.CancelOrder(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)
}

func TestCancelOrder_LargeUnitsReturnConvertedStock(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 1)

	_, err := e.svc.AddItem(ctx, ports.AddItemInput{
		OrderID: order.ID, BusinessAreaID: e.areaID, ProductID: e.gel.ID, Quantity: 2, UnitType: catalogdomain.UnitLarge,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 100-1-20, e.stock(t))

	_, err = e.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 100, e.stock(t))
}

func TestCancelOrder_RejectsSettledAndMissing(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 1)
	_, err := e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.cash, Amount: 100000})
	require.NoError(t, err)

	_, err = e.svc.CancelOrder(ctx, order.ID)
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, err, domain.ErrOrderSettled)

	_, err = e.svc.CancelOrder(ctx, "ORD-0-00000")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPayment_PartialThenSettled(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 1)

	paid, err := e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.cash, Amount: 20000})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPartiallyPaid, paid.Status)
	assert.EqualValues(t, 20000, paid.TotalPaid())
	assert.EqualValues(t, 80000, paid.RemainingBalance())
	require.Len(t, paid.Payments, 1)
	assert.Equal(t, domain.PaymentDown, paid.Payments[0].Type)

	_, err = e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.cash, Amount: 90000, Type: "additional"})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrOverpayment)

	settled, err := e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.cash, Amount: 80000, Type: "additional"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, settled.Status)
	assert.Zero(t, settled.RemainingBalance())
	require.Len(t, settled.Payments, 2)
	assert.Equal(t, domain.PaymentAdditional, settled.Payments[1].Type)

	_, err = e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.cash, Amount: 1})
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, err, domain.ErrNotPayable)
}

func TestRecordPayment_Validation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 1)

	_, err := e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.cash, Amount: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.cash, Amount: 100, Type: "refund"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: 9999, Amount: 100})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.retiredCash, Amount: 100})
	require.ErrorIs(t, err, ErrInactiveMethod)

	_, err = e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: "ORD-0-00000", PaymentMethodID: e.cash, Amount: 100})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPayment_CancelledOrder(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 1)
	_, err := e.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)

	_, err = e.svc.RecordPayment(ctx, ports.PaymentInput{OrderID: order.ID, PaymentMethodID: e.cash, Amount: 100})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestRescheduleItem_MovesQuota(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 2)
	itemID := order.Items[0].ID

	moved, err := e.svc.RescheduleItem(ctx, ports.RescheduleInput{OrderID: order.ID, ItemID: itemID, SelectedScheduleID: e.otherSlot.ID})
	require.NoError(t, err)
	assert.Equal(t, itemID, moved.ID)
	assert.Equal(t, e.otherSlot.ID, *moved.ScheduleID)
	assert.EqualValues(t, 3, e.remaining(t, e.slot.ID))
	assert.Zero(t, e.remaining(t, e.otherSlot.ID))

	_, err = e.svc.RescheduleItem(ctx, ports.RescheduleInput{OrderID: order.ID, ItemID: itemID, SelectedScheduleID: e.otherSlot.ID})
	require.ErrorIs(t, err, ErrSameSchedule)
}

func TestRescheduleItem_Failures(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 3)
	therapyItem, gelItem := order.Items[0].ID, order.Items[1].ID

	_, err := e.svc.RescheduleItem(ctx, ports.RescheduleInput{OrderID: order.ID, ItemID: therapyItem, SelectedScheduleID: e.otherSlot.ID})
	require.ErrorIs(t, err, ErrSlotTaken)
	assert.Zero(t, e.remaining(t, e.slot.ID))
	assert.EqualValues(t, 2, e.remaining(t, e.otherSlot.ID))

	_, err = e.svc.RescheduleItem(ctx, ports.RescheduleInput{OrderID: order.ID, ItemID: gelItem, SelectedScheduleID: e.otherSlot.ID})
	require.ErrorIs(t, err, ErrNotScheduled)

	_, err = e.svc.RescheduleItem(ctx, ports.RescheduleInput{OrderID: order.ID, ItemID: 9999, SelectedScheduleID: e.otherSlot.ID})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = e.svc.RescheduleItem(ctx, ports.RescheduleInput{OrderID: order.ID, ItemID: therapyItem, SelectedScheduleID: 9999})
	require.ErrorIs(t, err, ErrNotFound)

	foreign, err := e.schedules.InsertSchedules(ctx, []scheduledomain.Schedule{{
		ProductID: e.gel.ID, BusinessAreaID: e.areaID, StartTime: time.Unix(0, 0).UTC(), EndTime: time.Unix(3600, 0).UTC(), MaxQuota: 5, RemainingQuota: 5,
	}})
	require.NoError(t, err)
	_, err = e.svc.RescheduleItem(ctx, ports.RescheduleInput{OrderID: order.ID, ItemID: therapyItem, SelectedScheduleID: foreign[0].ID})
	require.ErrorIs(t, err, ErrScheduleMismatch)
}

func TestAddItem(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 1)
	slotID := e.otherSlot.ID

	updated, err := e.svc.AddItem(ctx, ports.AddItemInput{
		OrderID: order.ID, BusinessAreaID: e.areaID, ProductID: e.gel.ID, Quantity: 3, UnitType: catalogdomain.UnitSmall,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 100000+15000, updated.TotalPrice)
	assert.EqualValues(t, 100-1-3, e.stock(t))

	updated, err = e.svc.AddItem(ctx, ports.AddItemInput{
		OrderID: order.ID, BusinessAreaID: e.areaID, ProductID: e.therapy.ID, Quantity: 1, UnitType: catalogdomain.UnitLarge, ScheduleID: &slotID,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 215000, updated.TotalPrice)
	assert.EqualValues(t, 1, e.remaining(t, slotID))
	require.Len(t, updated.Items, 4)
	require.NotNil(t, updated.Items[3].Schedule)
	assert.Equal(t, slotID, updated.Items[3].Schedule.ID)
}

func TestAddItem_Failures(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 1)
	slotID := e.otherSlot.ID

	_, err := e.svc.AddItem(ctx, ports.AddItemInput{
		OrderID: order.ID, BusinessAreaID: e.areaID, ProductID: e.gel.ID, Quantity: 1, UnitType: catalogdomain.UnitSmall, ScheduleID: &slotID,
	})
	require.ErrorIs(t, err, ErrScheduleNotAllowed)

	_, err = e.svc.AddItem(ctx, ports.AddItemInput{
		OrderID: order.ID, BusinessAreaID: e.areaID, ProductID: e.gel.ID, Quantity: 20, UnitType: catalogdomain.UnitLarge,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = e.svc.AddItem(ctx, ports.AddItemInput{
		OrderID: order.ID, BusinessAreaID: e.areaID, ProductID: e.gel.ID, Quantity: 1, UnitType: "crate",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.AddItem(ctx, ports.AddItemInput{
		OrderID: order.ID, BusinessAreaID: e.otherAreaID, ProductID: e.gel.ID, Quantity: 1, UnitType: catalogdomain.UnitSmall,
	})
	require.ErrorIs(t, err, domain.ErrAreaMismatch)

	_, err = e.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	_, err = e.svc.AddItem(ctx, ports.AddItemInput{
		OrderID: order.ID, BusinessAreaID: e.areaID, ProductID: e.gel.ID, Quantity: 1, UnitType: catalogdomain.UnitSmall,
	})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateAttendanceAndAssign(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	order := e.book(t, 1)

	updated, err := e.svc.UpdateAttendance(ctx, order.ID, domain.AttendanceAttended)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceAttended, updated.Attendance)

	_, err = e.svc.UpdateAttendance(ctx, order.ID, "LATE")
	require.ErrorIs(t, err, ErrInvalidInput)

	assigned, err := e.svc.AssignItem(ctx, ports.AssignInput{OrderID: order.ID, ItemID: order.Items[0].ID, PatientID: e.patientID})
	require.NoError(t, err)
	assert.True(t, assigned.Items[0].IsAssigned)
	assert.Equal(t, e.patientID, *assigned.Items[0].PatientID)

	_, err = e.svc.AssignItem(ctx, ports.AssignInput{OrderID: order.ID, ItemID: order.Items[0].ID, PatientID: e.outsiderID})
	require.ErrorIs(t, err, domain.ErrAreaMismatch)

	_, err = e.svc.AssignItem(ctx, ports.AssignInput{OrderID: order.ID, ItemID: order.Items[0].ID, PatientID: 9999})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders_NewestFirst(t *testing.T) {
	clock := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	e := newEngine(t, WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}))
	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		ids = append(ids, e.book(t, 1).ID)
	}

	list, err := e.svc.ListOrders(context.Background(), ports.ListFilter{BusinessAreaID: e.areaID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)

	list, err = e.svc.ListOrders(context.Background(), ports.ListFilter{Status: domain.StatusCancelled})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetOrder_IncludesScheduleAndBalance(t *testing.T) {
	e := newEngine(t)
	order := e.book(t, 1)

	got, err := e.svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Items[0].Schedule)
	assert.Equal(t, e.slot.ID, got.Items[0].Schedule.ID)
	assert.EqualValues(t, 100000, got.RemainingBalance())
	assert.Equal(t, order.ID, got.ID)
}
