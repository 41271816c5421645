package mapper

import (
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
)

// TemplateRequest is the body of POST /api/schedule-templates.
type TemplateRequest struct {
	ProductID      int64  `json:"product_id" binding:"required,gt=0"`
	BusinessAreaID int64  `json:"business_area_id" binding:"required,gt=0"`
	StartTime      string `json:"start_time" binding:"required"`
	EndTime        string `json:"end_time" binding:"required"`
	MaxQuota       int64  `json:"max_quota" binding:"required,gt=0"`
}

// ToDomain parses the wall-clock times.
func (r TemplateRequest) ToDomain() (*domain.Template, error) {
	start, err := domain.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return nil, err
	}
	return &domain.Template{
		ProductID:      r.ProductID,
		BusinessAreaID: r.BusinessAreaID,
		StartTime:      start,
		EndTime:        end,
		MaxQuota:       r.MaxQuota,
	}, nil
}

// Template is the transport view of a schedule template.
type Template struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	BusinessAreaID int64  `json:"business_area_id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	MaxQuota       int64  `json:"max_quota"`
	IsActive       bool   `json:"is_active"`
}

func FromDomainTemplate(t *domain.Template) Template {
	if t == nil {
		return Template{}
	}
	return Template{
		ID:             t.ID,
		ProductID:      t.ProductID,
		BusinessAreaID: t.BusinessAreaID,
		StartTime:      t.StartTime.String(),
		EndTime:        t.EndTime.String(),
		MaxQuota:       t.MaxQuota,
		IsActive:       t.IsActive,
	}
}

func FromDomainTemplates(templates []domain.Template) []Template {
	out := make([]Template, 0, len(templates))
	for i := range templates {
		out = append(out, FromDomainTemplate(&templates[i]))
	}
	return out
}

// GenerateRequest is the body of POST /api/schedules.
type GenerateRequest struct {
	BusinessAreaID int64  `json:"business_area_id" binding:"required,gt=0"`
	ProductID      int64  `json:"product_id" binding:"required,gt=0"`
	TargetDate     string `json:"target_date" binding:"required,datetime=2006-01-02"`
	Timezone       string `json:"timezone" binding:"omitempty,timezone"`
}

func (r GenerateRequest) ToInput() ports.GenerateInput {
	return ports.GenerateInput{
		BusinessAreaID: r.BusinessAreaID,
		ProductID:      r.ProductID,
		Date:           r.TargetDate,
		Timezone:       r.Timezone,
	}
}

// ListQuery is the query string of GET /api/schedules.
type ListQuery struct {
	BusinessAreaID int64  `form:"business_area_id" json:"business_area_id" binding:"required,gt=0"`
	ProductID      int64  `form:"product_id" json:"product_id" binding:"required,gt=0"`
	Date           string `form:"date" json:"date" binding:"required,datetime=2006-01-02"`
	Timezone       string `form:"timezone" json:"timezone" binding:"omitempty,timezone"`
}

func (q ListQuery) ToInput() ports.ListInput {
	return ports.ListInput{
		BusinessAreaID: q.BusinessAreaID,
		ProductID:      q.ProductID,
		Date:           q.Date,
		Timezone:       q.Timezone,
	}
}

// Schedule is the transport view of a concrete slot.
type Schedule struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	BusinessAreaID int64     `json:"business_area_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	MaxQuota       int64     `json:"max_quota"`
	RemainingQuota int64     `json:"remaining_quota"`
}

func FromDomainSchedule(s *domain.Schedule) Schedule {
	if s == nil {
		return Schedule{}
	}
	return Schedule{
		ID:             s.ID,
		ProductID:      s.ProductID,
		BusinessAreaID: s.BusinessAreaID,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		MaxQuota:       s.MaxQuota,
		RemainingQuota: s.RemainingQuota,
	}
}

func FromDomainSchedules(schedules []domain.Schedule) []Schedule {
	out := make([]Schedule, 0, len(schedules))
	for i := range schedules {
		out = append(out, FromDomainSchedule(&schedules[i]))
	}
	return out
}

// GenerateResult reports a generation pass.
type GenerateResult struct {
	Created   int        `json:"created"`
	Skipped   int        `json:"skipped"`
	Schedules []Schedule `json:"schedules"`
}

func FromGenerateResult(r *ports.GenerateResult) GenerateResult {
	if r == nil {
		return GenerateResult{Schedules: []Schedule{}}
	}
	return GenerateResult{Created: r.Created, Skipped: r.Skipped, Schedules: FromDomainSchedules(r.Schedules)}
}
