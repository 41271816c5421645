package mapper

import (
	"time"

	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
)

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	BusinessAreaID int64 `json:"business_area_id" binding:"required,gt=0"`
	ServiceID      int64 `json:"service_id" binding:"required,gt=0"`
	ScheduleID     int64 `json:"schedule_id" binding:"required,gt=0"`
	Quantity       int64 `json:"quantity" binding:"required,gt=0"`
}

// ToCreateInput converts the request. idempotencyKey comes from the Idempotency-Key header.
func (r CreateOrderRequest) ToCreateInput(idempotencyKey string) ports.CreateOrderInput {
	return ports.CreateOrderInput{
		BusinessAreaID: r.BusinessAreaID,
		ServiceID:      r.ServiceID,
		ScheduleID:     r.ScheduleID,
		Quantity:       r.Quantity,
		IdempotencyKey: idempotencyKey,
	}
}

// PaymentRequest is the body of PATCH /api/orders/:orderId/pay.
type PaymentRequest struct {
	PaymentMethodID int64  `json:"payment_method_id" binding:"required,gt=0"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	Type            string `json:"type" binding:"omitempty,oneof=dp additional"`
}

func (r PaymentRequest) ToInput(orderID string) ports.PaymentInput {
	return ports.PaymentInput{
		OrderID:         orderID,
		PaymentMethodID: r.PaymentMethodID,
		Amount:          r.Amount,
		Type:            r.Type,
	}
}

// RescheduleRequest is the body of PATCH /api/orders/:orderId/items/:orderItemId/reschedule.
type RescheduleRequest struct {
	SelectedScheduleID int64 `json:"selected_schedule_id" binding:"required,gt=0"`
}

// AddItemRequest is the body of POST /api/orders/:orderId/add-item.
type AddItemRequest struct {
	ProductID      int64  `json:"product_id" binding:"required,gt=0"`
	BusinessAreaID int64  `json:"business_area_id" binding:"required,gt=0"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
	UnitType       string `json:"unit_type" binding:"required,oneof=LARGE SMALL"`
	ScheduleID     *int64 `json:"schedule_id" binding:"omitempty,gt=0"`
}

func (r AddItemRequest) ToInput(orderID string) ports.AddItemInput {
	return ports.AddItemInput{
		OrderID:        orderID,
		BusinessAreaID: r.BusinessAreaID,
		ProductID:      r.ProductID,
		Quantity:       r.Quantity,
		UnitType:       catalogdomain.UnitType(r.UnitType),
		ScheduleID:     r.ScheduleID,
	}
}

// AttendanceRequest is the body of PATCH /api/orders/:orderId/attendance.
type AttendanceRequest struct {
	AttendanceStatus string `json:"attendance_status" binding:"required,oneof=PENDING HAS_ATTENDED NO_SHOW"`
}

// AssignRequest is the body of PATCH /api/orders/:orderId/items/:orderItemId/assign.
type AssignRequest struct {
	PatientID int64 `json:"patient_id" binding:"required,gt=0"`
}

// CreatedResponse answers creations that only report an identifier.
type CreatedResponse struct {
	ID any `json:"id"`
}

// Order is the transport view of an order.
type Order struct {
	ID               string    `json:"id"`
	BusinessAreaID   int64     `json:"business_area_id"`
	TotalPrice       int64     `json:"total_price"`
	DP               int64     `json:"dp"`
	Status           string    `json:"status"`
	AttendanceStatus string    `json:"attendance_status"`
	TotalPaid        int64     `json:"total_paid"`
	RemainingBalance int64     `json:"remaining_balance"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Items            []Item    `json:"items"`
	Payments         []Payment `json:"payments"`
}

// Item is the transport view of an order item.
type Item struct {
	ID                    int64     `json:"id"`
	ProductID             int64     `json:"product_id"`
	ProductBusinessAreaID int64     `json:"product_business_area_id"`
	ScheduleID            *int64    `json:"schedule_id"`
	Quantity              int64     `json:"quantity"`
	UnitUsed              string    `json:"unit_used"`
	Price                 int64     `json:"price"`
	ServiceID             *int64    `json:"service_id"`
	ServicePrice          int64     `json:"service_price"`
	ServiceQuantity       int64     `json:"service_quantity"`
	IsAssigned            bool      `json:"is_assigned"`
	PatientID             *int64    `json:"patient_id"`
	Schedule              *Schedule `json:"schedule,omitempty"`
}

// Schedule is the slot nested in an item.
type Schedule struct {
	ID             int64     `json:"id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	MaxQuota       int64     `json:"max_quota"`
	RemainingQuota int64     `json:"remaining_quota"`
}

// Payment is one entry of the payment history.
type Payment struct {
	ID              int64     `json:"id"`
	PaymentMethodID int64     `json:"payment_method_id"`
	Amount          int64     `json:"amount"`
	Type            string    `json:"type"`
	CreatedAt       time.Time `json:"created_at"`
}

// FromDomainOrder converts a domain order, filling the computed balance fields.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:               order.ID,
		BusinessAreaID:   order.BusinessAreaID,
		TotalPrice:       order.TotalPrice,
		DP:               order.DP,
		Status:           string(order.Status),
		AttendanceStatus: string(order.Attendance),
		TotalPaid:        order.TotalPaid(),
		RemainingBalance: order.RemainingBalance(),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		Items:            make([]Item, 0, len(order.Items)),
		Payments:         make([]Payment, 0, len(order.Payments)),
	}
	for _, item := range order.Items {
		out.Items = append(out.Items, FromDomainItem(item))
	}
	for _, p := range order.Payments {
		out.Payments = append(out.Payments, Payment{
			ID:              p.ID,
			PaymentMethodID: p.PaymentMethodID,
			Amount:          p.Amount,
			Type:            string(p.Type),
			CreatedAt:       p.CreatedAt,
		})
	}
	return out
}

// FromDomainOrders converts a list of orders.
func FromDomainOrders(orders []domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for i := range orders {
		out = append(out, FromDomainOrder(&orders[i]))
	}
	return out
}

func FromDomainItem(item domain.Item) Item {
	return Item{
		ID:                    item.ID,
		ProductID:             item.ProductID,
		ProductBusinessAreaID: item.ProductBusinessAreaID,
		ScheduleID:            item.ScheduleID,
		Quantity:              item.Quantity,
		UnitUsed:              string(item.UnitUsed),
		Price:                 item.Price,
		ServiceID:             item.ServiceID,
		ServicePrice:          item.ServicePrice,
		ServiceQuantity:       item.ServiceQuantity,
		IsAssigned:            item.IsAssigned,
		PatientID:             item.PatientID,
		Schedule:              fromSchedule(item.Schedule),
	}
}

func fromSchedule(s *scheduledomain.Schedule) *Schedule {
	if s == nil {
		return nil
	}
	return &Schedule{
		ID:             s.ID,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		MaxQuota:       s.MaxQuota,
		RemainingQuota: s.RemainingQuota,
	}
}
