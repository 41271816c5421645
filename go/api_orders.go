package clinicserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/domain"
	orderports "github.com/ignasiusberneo/clinic-admin/internal/domains/orders/ports"
)

// IdempotencyKeyHeader lets clients retry order creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderAPI wires HTTP transport with the order engine.
type OrderAPI struct {
	service orderports.Service
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service orderports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Post /api/orders
// Create an order for a bookable service and reserve its slot
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	var payload ordermapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	order, err := api.service.CreateOrder(c.Request.Context(), payload.ToCreateInput(key))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.CreatedResponse{ID: order.ID})
}

// Get /api/orders
// List orders, newest first
func (api *OrderAPI) ListOrders(c *gin.Context) {
	areaID, ok := parseIDQuery(c, "business_area_id")
	if !ok {
		return
	}
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	filter := orderports.ListFilter{BusinessAreaID: areaID, Limit: limit, Offset: offset}
	if raw := c.Query("status"); raw != "" {
		status, err := orderdomain.ParseStatus(raw)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		filter.Status = status
	}
	orders, err := api.service.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrders(orders))
}

// Get /api/orders/:orderId
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, err := api.service.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Patch /api/orders/:orderId/cancel
// Cancel an order, returning its slots and stock
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	order, err := api.service.CancelOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Patch /api/orders/:orderId/pay
// Record a payment
func (api *OrderAPI) PayOrder(c *gin.Context) {
	var payload ordermapper.PaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.RecordPayment(c.Request.Context(), payload.ToInput(c.Param("orderId")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Post /api/orders/:orderId/add-item
// Add a product line to an open order
func (api *OrderAPI) AddItem(c *gin.Context) {
	var payload ordermapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.AddItem(c.Request.Context(), payload.ToInput(c.Param("orderId")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromDomainOrder(order))
}

// Patch /api/orders/:orderId/attendance
func (api *OrderAPI) UpdateAttendance(c *gin.Context) {
	var payload ordermapper.AttendanceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	attendance, err := orderdomain.ParseAttendance(payload.AttendanceStatus)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := api.service.UpdateAttendance(c.Request.Context(), c.Param("orderId"), attendance)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}

// Patch /api/orders/:orderId/items/:orderItemId/reschedule
// Move an item to another slot
func (api *OrderAPI) RescheduleItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "orderItemId")
	if !ok {
		return
	}
	var payload ordermapper.RescheduleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := api.service.RescheduleItem(c.Request.Context(), orderports.RescheduleInput{
		OrderID:            c.Param("orderId"),
		ItemID:             itemID,
		SelectedScheduleID: payload.SelectedScheduleID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.CreatedResponse{ID: item.ID})
}

// Patch /api/orders/:orderId/items/:orderItemId/assign
// Assign an item to a patient
func (api *OrderAPI) AssignItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "orderItemId")
	if !ok {
		return
	}
	var payload ordermapper.AssignRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := api.service.AssignItem(c.Request.Context(), orderports.AssignInput{
		OrderID:   c.Param("orderId"),
		ItemID:    itemID,
		PatientID: payload.PatientID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}
