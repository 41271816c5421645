package clinicserver

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	identitydomain "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/shared/validation"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Public routes skip session checks.
	Public bool
	// RateLimited routes pass through RouterOptions.LoginLimiter.
	RateLimited bool
	// Permission is required on top of a valid session. Empty means any signed-in user.
	Permission identitydomain.Permission
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	AuthAPI       AuthAPI
	OrderAPI      OrderAPI
	ScheduleAPI   ScheduleAPI
	CatalogAPI    CatalogAPI
	MasterDataAPI MasterDataAPI
	UserAPI       UserAPI
	RealtimeAPI   RealtimeAPI
	HealthAPI     HealthAPI
}

// RouterOptions carries cross-cutting middleware.
type RouterOptions struct {
	Authenticator Authenticator
	// LoginLimiter throttles the login route. Nil disables throttling.
	LoginLimiter gin.HandlerFunc
	// Middleware runs before every route, e.g. tracing.
	Middleware []gin.HandlerFunc
	Logger     *slog.Logger
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	return NewRouterWithGinEngine(router, handleFunctions, opts)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, opts RouterOptions) *gin.Engine {
	SetErrorLogger(opts.Logger)
	validation.Validator()

	router.Use(opts.Middleware...)
	session := SessionMiddleware(opts.Authenticator)
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		chain := make([]gin.HandlerFunc, 0, 4)
		if route.RateLimited && opts.LoginLimiter != nil {
			chain = append(chain, opts.LoginLimiter)
		}
		if !route.Public {
			chain = append(chain, session)
			if route.Permission != "" {
				chain = append(chain, RequirePermission(route.Permission))
			}
		}
		chain = append(chain, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// DefaultHandleFunc answers routes without an implementation.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(h ApiHandleFunctions) []Route {
	const (
		orderRead   = identitydomain.PermOrdersRead
		orderCreate = identitydomain.PermOrdersCreate
		orderUpdate = identitydomain.PermOrdersUpdate
		orderCancel = identitydomain.PermOrdersCancel
		orderPay    = identitydomain.PermOrdersPay
		schedRead   = identitydomain.PermSchedulesRead
		schedWrite  = identitydomain.PermSchedulesWrite
		catRead     = identitydomain.PermCatalogRead
		catWrite    = identitydomain.PermCatalogWrite
		stockWrite  = identitydomain.PermStockWrite
		mdRead      = identitydomain.PermMasterdataRead
		mdWrite     = identitydomain.PermMasterdataWrite
		usersManage = identitydomain.PermUsersManage
	)
	return []Route{
		{Name: "Healthz", Method: http.MethodGet, Pattern: "/healthz", Public: true, HandlerFunc: h.HealthAPI.Healthz},

		{Name: "Login", Method: http.MethodPost, Pattern: "/api/auth/login", Public: true, RateLimited: true, HandlerFunc: h.AuthAPI.Login},
		{Name: "Logout", Method: http.MethodPost, Pattern: "/api/auth/logout", HandlerFunc: h.AuthAPI.Logout},
		{Name: "Me", Method: http.MethodGet, Pattern: "/api/auth/me", HandlerFunc: h.AuthAPI.Me},

		{Name: "CreateOrder", Method: http.MethodPost, Pattern: "/api/orders", Permission: orderCreate, HandlerFunc: h.OrderAPI.CreateOrder},
		{Name: "ListOrders", Method: http.MethodGet, Pattern: "/api/orders", Permission: orderRead, HandlerFunc: h.OrderAPI.ListOrders},
		{Name: "GetOrder", Method: http.MethodGet, Pattern: "/api/orders/:orderId", Permission: orderRead, HandlerFunc: h.OrderAPI.GetOrder},
		{Name: "CancelOrder", Method: http.MethodPatch, Pattern: "/api/orders/:orderId/cancel", Permission: orderCancel, HandlerFunc: h.OrderAPI.CancelOrder},
		{Name: "PayOrder", Method: http.MethodPatch, Pattern: "/api/orders/:orderId/pay", Permission: orderPay, HandlerFunc: h.OrderAPI.PayOrder},
		{Name: "AddOrderItem", Method: http.MethodPost, Pattern: "/api/orders/:orderId/add-item", Permission: orderUpdate, HandlerFunc: h.OrderAPI.AddItem},
		{Name: "UpdateAttendance", Method: http.MethodPatch, Pattern: "/api/orders/:orderId/attendance", Permission: orderUpdate, HandlerFunc: h.OrderAPI.UpdateAttendance},
		{Name: "RescheduleItem", Method: http.MethodPatch, Pattern: "/api/orders/:orderId/items/:orderItemId/reschedule", Permission: orderUpdate, HandlerFunc: h.OrderAPI.RescheduleItem},
		{Name: "AssignItem", Method: http.MethodPatch, Pattern: "/api/orders/:orderId/items/:orderItemId/assign", Permission: orderUpdate, HandlerFunc: h.OrderAPI.AssignItem},

		{Name: "ListSchedules", Method: http.MethodGet, Pattern: "/api/schedules", Permission: schedRead, HandlerFunc: h.ScheduleAPI.ListSchedules},
		{Name: "GenerateSchedules", Method: http.MethodPost, Pattern: "/api/schedules", Permission: schedWrite, HandlerFunc: h.ScheduleAPI.GenerateSchedules},
		{Name: "GetSchedule", Method: http.MethodGet, Pattern: "/api/schedules/:scheduleId", Permission: schedRead, HandlerFunc: h.ScheduleAPI.GetSchedule},
		{Name: "ListScheduleTemplates", Method: http.MethodGet, Pattern: "/api/schedule-templates", Permission: schedRead, HandlerFunc: h.ScheduleAPI.ListTemplates},
		{Name: "CreateScheduleTemplate", Method: http.MethodPost, Pattern: "/api/schedule-templates", Permission: schedWrite, HandlerFunc: h.ScheduleAPI.CreateTemplate},

		{Name: "ListProducts", Method: http.MethodGet, Pattern: "/api/products", Permission: catRead, HandlerFunc: h.CatalogAPI.ListProducts},
		{Name: "CreateProduct", Method: http.MethodPost, Pattern: "/api/products", Permission: catWrite, HandlerFunc: h.CatalogAPI.CreateProduct},
		{Name: "GetProduct", Method: http.MethodGet, Pattern: "/api/products/:businessAreaId/:productId", Permission: catRead, HandlerFunc: h.CatalogAPI.GetProduct},
		{Name: "UpdateProduct", Method: http.MethodPut, Pattern: "/api/products/:businessAreaId/:productId", Permission: catWrite, HandlerFunc: h.CatalogAPI.UpdateProduct},
		{Name: "DeleteProduct", Method: http.MethodDelete, Pattern: "/api/products/:businessAreaId/:productId", Permission: catWrite, HandlerFunc: h.CatalogAPI.DeleteProduct},
		{Name: "ListServices", Method: http.MethodGet, Pattern: "/api/services", Permission: catRead, HandlerFunc: h.CatalogAPI.ListServices},
		{Name: "CreateService", Method: http.MethodPost, Pattern: "/api/services", Permission: catWrite, HandlerFunc: h.CatalogAPI.CreateService},
		{Name: "GetService", Method: http.MethodGet, Pattern: "/api/services/:serviceId", Permission: catRead, HandlerFunc: h.CatalogAPI.GetService},
		{Name: "ListStocks", Method: http.MethodGet, Pattern: "/api/stocks", Permission: catRead, HandlerFunc: h.CatalogAPI.ListStocks},
		{Name: "AdjustStock", Method: http.MethodPost, Pattern: "/api/stocks/adjust", Permission: stockWrite, HandlerFunc: h.CatalogAPI.AdjustStock},

		{Name: "ListBusinessAreas", Method: http.MethodGet, Pattern: "/api/business-areas", Permission: mdRead, HandlerFunc: h.MasterDataAPI.ListBusinessAreas},
		{Name: "CreateBusinessArea", Method: http.MethodPost, Pattern: "/api/business-areas", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.CreateBusinessArea},
		{Name: "GetBusinessArea", Method: http.MethodGet, Pattern: "/api/business-areas/:id", Permission: mdRead, HandlerFunc: h.MasterDataAPI.GetBusinessArea},
		{Name: "UpdateBusinessArea", Method: http.MethodPut, Pattern: "/api/business-areas/:id", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.UpdateBusinessArea},
		{Name: "ListPaymentMethods", Method: http.MethodGet, Pattern: "/api/payment-methods", Permission: mdRead, HandlerFunc: h.MasterDataAPI.ListPaymentMethods},
		{Name: "CreatePaymentMethod", Method: http.MethodPost, Pattern: "/api/payment-methods", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.CreatePaymentMethod},
		{Name: "GetPaymentMethod", Method: http.MethodGet, Pattern: "/api/payment-methods/:id", Permission: mdRead, HandlerFunc: h.MasterDataAPI.GetPaymentMethod},
		{Name: "UpdatePaymentMethod", Method: http.MethodPut, Pattern: "/api/payment-methods/:id", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.UpdatePaymentMethod},
		{Name: "ListReferralTypes", Method: http.MethodGet, Pattern: "/api/referral-types", Permission: mdRead, HandlerFunc: h.MasterDataAPI.ListReferralTypes},
		{Name: "CreateReferralType", Method: http.MethodPost, Pattern: "/api/referral-types", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.CreateReferralType},
		{Name: "GetReferralType", Method: http.MethodGet, Pattern: "/api/referral-types/:id", Permission: mdRead, HandlerFunc: h.MasterDataAPI.GetReferralType},
		{Name: "UpdateReferralType", Method: http.MethodPut, Pattern: "/api/referral-types/:id", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.UpdateReferralType},
		{Name: "ListPatients", Method: http.MethodGet, Pattern: "/api/patients", Permission: mdRead, HandlerFunc: h.MasterDataAPI.ListPatients},
		{Name: "CreatePatient", Method: http.MethodPost, Pattern: "/api/patients", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.CreatePatient},
		{Name: "GetPatient", Method: http.MethodGet, Pattern: "/api/patients/:id", Permission: mdRead, HandlerFunc: h.MasterDataAPI.GetPatient},
		{Name: "UpdatePatient", Method: http.MethodPut, Pattern: "/api/patients/:id", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.UpdatePatient},
		{Name: "ListEmployees", Method: http.MethodGet, Pattern: "/api/employees", Permission: mdRead, HandlerFunc: h.MasterDataAPI.ListEmployees},
		{Name: "CreateEmployee", Method: http.MethodPost, Pattern: "/api/employees", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.CreateEmployee},
		{Name: "GetEmployee", Method: http.MethodGet, Pattern: "/api/employees/:id", Permission: mdRead, HandlerFunc: h.MasterDataAPI.GetEmployee},
		{Name: "UpdateEmployee", Method: http.MethodPut, Pattern: "/api/employees/:id", Permission: mdWrite, HandlerFunc: h.MasterDataAPI.UpdateEmployee},

		{Name: "ListUsers", Method: http.MethodGet, Pattern: "/api/users", Permission: usersManage, HandlerFunc: h.UserAPI.ListUsers},
		{Name: "CreateUser", Method: http.MethodPost, Pattern: "/api/users", Permission: usersManage, HandlerFunc: h.UserAPI.CreateUser},
		{Name: "ListRoles", Method: http.MethodGet, Pattern: "/api/roles", Permission: usersManage, HandlerFunc: h.UserAPI.ListRoles},
		{Name: "CreateRole", Method: http.MethodPost, Pattern: "/api/roles", Permission: usersManage, HandlerFunc: h.UserAPI.CreateRole},

		{Name: "SubscribeQuota", Method: http.MethodGet, Pattern: "/api/ws", Permission: schedRead, HandlerFunc: h.RealtimeAPI.Subscribe},
	}
}
