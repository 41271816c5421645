package ports

import (
	"context"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
)

// ListInput selects the schedules of one local calendar day.
type ListInput struct {
	BusinessAreaID int64
	ProductID      int64
	Date           string
	Timezone       string
}

// GenerateInput instantiates every active template of a product for one day.
type GenerateInput struct {
	BusinessAreaID int64
	ProductID      int64
	Date           string
	Timezone       string
}

// GenerateResult reports what GenerateSchedules produced.
type GenerateResult struct {
	Created   int
	Skipped   int
	Schedules []domain.Schedule
}

// Service exposes schedule use cases.
type Service interface {
	CreateTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]domain.Template, error)
	GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error)
	ListSchedules(ctx context.Context, input ListInput) ([]domain.Schedule, error)
	GenerateSchedules(ctx context.Context, input GenerateInput) (*GenerateResult, error)
}

// WorkflowOrchestrator runs schedule generation, durably when a workflow engine is available.
type WorkflowOrchestrator interface {
	GenerateSchedules(ctx context.Context, input GenerateInput) (*GenerateResult, error)
}

// QuotaNotifier is told about schedules whose remaining quota changed.
type QuotaNotifier interface {
	QuotaChanged(ctx context.Context, schedules ...domain.Schedule)
}
