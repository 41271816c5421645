package clinicserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	schedulemapper "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/adapters/http/mapper"
	scheduleports "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
)

// ScheduleAPI wires HTTP transport with the schedule service and the generation workflow.
type ScheduleAPI struct {
	service   scheduleports.Service
	workflows scheduleports.WorkflowOrchestrator
}

// NewScheduleAPI creates a ScheduleAPI. A nil orchestrator generates inline.
func NewScheduleAPI(service scheduleports.Service, workflows scheduleports.WorkflowOrchestrator) ScheduleAPI {
	return ScheduleAPI{service: service, workflows: workflows}
}

// Get /api/schedules
// List the slots of a product on one local day
func (api *ScheduleAPI) ListSchedules(c *gin.Context) {
	var query schedulemapper.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}
	schedules, err := api.service.ListSchedules(c.Request.Context(), query.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedulemapper.FromDomainSchedules(schedules))
}

// Post /api/schedules
// Instantiate the active templates of a product for one day
func (api *ScheduleAPI) GenerateSchedules(c *gin.Context) {
	var payload schedulemapper.GenerateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	generate := api.service.GenerateSchedules
	if api.workflows != nil {
		generate = api.workflows.GenerateSchedules
	}
	result, err := generate(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedulemapper.FromGenerateResult(result))
}

// Get /api/schedules/:scheduleId
func (api *ScheduleAPI) GetSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "scheduleId")
	if !ok {
		return
	}
	schedule, err := api.service.GetSchedule(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedulemapper.FromDomainSchedule(schedule))
}

// Get /api/schedule-templates
func (api *ScheduleAPI) ListTemplates(c *gin.Context) {
	areaID, ok := parseIDQuery(c, "business_area_id")
	if !ok {
		return
	}
	productID, ok := parseIDQuery(c, "product_id")
	if !ok {
		return
	}
	templates, err := api.service.ListTemplates(c.Request.Context(), scheduleports.TemplateFilter{
		BusinessAreaID: areaID,
		ProductID:      productID,
		ActiveOnly:     queryBool(c, "active_only"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedulemapper.FromDomainTemplates(templates))
}

// Post /api/schedule-templates
func (api *ScheduleAPI) CreateTemplate(c *gin.Context) {
	var payload schedulemapper.TemplateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	template, err := payload.ToDomain()
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	saved, err := api.service.CreateTemplate(c.Request.Context(), template)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedulemapper.FromDomainTemplate(saved))
}
