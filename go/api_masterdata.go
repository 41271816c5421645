package clinicserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	mdmapper "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/adapters/http/mapper"
	mdports "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
)

// MasterDataAPI serves business areas, payment methods, referral types, patients and employees.
type MasterDataAPI struct {
	service mdports.Service
}

func NewMasterDataAPI(service mdports.Service) MasterDataAPI {
	return MasterDataAPI{service: service}
}

func (api *MasterDataAPI) ListBusinessAreas(c *gin.Context) {
	listAll(c, api.service.ListBusinessAreas, mdmapper.FromBusinessArea)
}

func (api *MasterDataAPI) CreateBusinessArea(c *gin.Context) {
	create(c, plain(mdmapper.BusinessArea.ToDomain), api.service.CreateBusinessArea, mdmapper.FromBusinessArea)
}

func (api *MasterDataAPI) GetBusinessArea(c *gin.Context) {
	get(c, api.service.GetBusinessArea, mdmapper.FromBusinessArea)
}

func (api *MasterDataAPI) UpdateBusinessArea(c *gin.Context) {
	update(c, plain(mdmapper.BusinessArea.ToDomain), api.service.UpdateBusinessArea, mdmapper.FromBusinessArea)
}

func (api *MasterDataAPI) ListPaymentMethods(c *gin.Context) {
	listAll(c, api.service.ListPaymentMethods, mdmapper.FromPaymentMethod)
}

func (api *MasterDataAPI) CreatePaymentMethod(c *gin.Context) {
	create(c, plain(mdmapper.PaymentMethod.ToDomain), api.service.CreatePaymentMethod, mdmapper.FromPaymentMethod)
}

func (api *MasterDataAPI) GetPaymentMethod(c *gin.Context) {
	get(c, api.service.GetPaymentMethod, mdmapper.FromPaymentMethod)
}

func (api *MasterDataAPI) UpdatePaymentMethod(c *gin.Context) {
	update(c, plain(mdmapper.PaymentMethod.ToDomain), api.service.UpdatePaymentMethod, mdmapper.FromPaymentMethod)
}

func (api *MasterDataAPI) ListReferralTypes(c *gin.Context) {
	listAll(c, api.service.ListReferralTypes, mdmapper.FromReferralType)
}

func (api *MasterDataAPI) CreateReferralType(c *gin.Context) {
	create(c, plain(mdmapper.ReferralType.ToDomain), api.service.CreateReferralType, mdmapper.FromReferralType)
}

func (api *MasterDataAPI) GetReferralType(c *gin.Context) {
	get(c, api.service.GetReferralType, mdmapper.FromReferralType)
}

func (api *MasterDataAPI) UpdateReferralType(c *gin.Context) {
	update(c, plain(mdmapper.ReferralType.ToDomain), api.service.UpdateReferralType, mdmapper.FromReferralType)
}

// Get /api/patients?business_area_id=
func (api *MasterDataAPI) ListPatients(c *gin.Context) {
	listScoped(c, api.service.ListPatients, mdmapper.FromPatient)
}

func (api *MasterDataAPI) CreatePatient(c *gin.Context) {
	create(c, mdmapper.Patient.ToDomain, api.service.CreatePatient, mdmapper.FromPatient)
}

func (api *MasterDataAPI) GetPatient(c *gin.Context) {
	get(c, api.service.GetPatient, mdmapper.FromPatient)
}

func (api *MasterDataAPI) UpdatePatient(c *gin.Context) {
	update(c, mdmapper.Patient.ToDomain, api.service.UpdatePatient, mdmapper.FromPatient)
}

// Get /api/employees?business_area_id=
func (api *MasterDataAPI) ListEmployees(c *gin.Context) {
	listScoped(c, api.service.ListEmployees, mdmapper.FromEmployee)
}

func (api *MasterDataAPI) CreateEmployee(c *gin.Context) {
	create(c, plain(mdmapper.Employee.ToDomain), api.service.CreateEmployee, mdmapper.FromEmployee)
}

func (api *MasterDataAPI) GetEmployee(c *gin.Context) {
	get(c, api.service.GetEmployee, mdmapper.FromEmployee)
}

func (api *MasterDataAPI) UpdateEmployee(c *gin.Context) {
	update(c, plain(mdmapper.Employee.ToDomain), api.service.UpdateEmployee, mdmapper.FromEmployee)
}

// plain adapts a conversion that cannot fail.
func plain[Req, T any](convert func(Req) *T) func(Req) (*T, error) {
	return func(r Req) (*T, error) { return convert(r), nil }
}

func listAll[T, R any](c *gin.Context, list func(context.Context) ([]T, error), view func(*T) R) {
	items, err := list(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mdmapper.List(items, view))
}

func listScoped[T, R any](c *gin.Context, list func(context.Context, mdports.Filter) ([]T, error), view func(*T) R) {
	areaID, ok := parseIDQuery(c, "business_area_id")
	if !ok {
		return
	}
	items, err := list(c.Request.Context(), mdports.Filter{BusinessAreaID: areaID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mdmapper.List(items, view))
}

func get[T, R any](c *gin.Context, load func(context.Context, int64) (*T, error), view func(*T) R) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := load(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(item))
}

func create[Req, T, R any](c *gin.Context, toDomain func(Req) (*T, error), save func(context.Context, *T) (*T, error), view func(*T) R) {
	entity, ok := bindEntity(c, toDomain)
	if !ok {
		return
	}
	saved, err := save(c.Request.Context(), entity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view(saved))
}

func update[Req, T, R any](c *gin.Context, toDomain func(Req) (*T, error), save func(context.Context, int64, *T) (*T, error), view func(*T) R) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entity, ok := bindEntity(c, toDomain)
	if !ok {
		return
	}
	saved, err := save(c.Request.Context(), id, entity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(saved))
}

func bindEntity[Req, T any](c *gin.Context, toDomain func(Req) (*T, error)) (*T, bool) {
	var payload Req
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return nil, false
	}
	entity, err := toDomain(payload)
	if err != nil {
		respondBadRequest(c, err)
		return nil, false
	}
	return entity, true
}
