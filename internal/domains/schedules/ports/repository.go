package ports

import (
	"context"
	"errors"
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
)

// ErrNotFound indicates the requested schedule or template is absent.
var ErrNotFound = errors.New("schedule not found")

// TemplateFilter narrows ListTemplates. Zero values match everything.
type TemplateFilter struct {
	BusinessAreaID int64
	ProductID      int64
	ActiveOnly     bool
}

// ScheduleFilter selects schedules whose start time lies in [From, To).
type ScheduleFilter struct {
	BusinessAreaID int64
	ProductID      int64
	From           time.Time
	To             time.Time
}

// Repository persists templates and schedules.
type Repository interface {
	SaveTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]domain.Template, error)
	GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]domain.Schedule, error)
	// InsertSchedules stores each schedule unless one already exists for the
	// same product, area and start time. It returns the rows it created.
	InsertSchedules(ctx context.Context, schedules []domain.Schedule) ([]domain.Schedule, error)
}
