package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	catalogports "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	masterdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	masterports "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
)

// Service implements schedule use cases.
type Service struct {
	repo            ports.Repository
	areas           ports.BusinessAreas
	products        ports.Products
	defaultTimezone string
}

// Option configures the service.
type Option func(*Service)

// WithDefaultTimezone sets the zone used when neither request nor area names one.
func WithDefaultTimezone(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultTimezone = name
		}
	}
}

func NewService(repo ports.Repository, areas ports.BusinessAreas, products ports.Products, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		areas:           areas,
		products:        products,
		defaultTimezone: masterdomain.DefaultTimezone,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	if template == nil {
		return nil, errors.New("template is nil")
	}
	template.ID = 0
	template.IsActive = true
	if err := template.Validate(); err != nil {
		return nil, mapError(err)
	}
	if _, err := s.area(ctx, template.BusinessAreaID); err != nil {
		return nil, err
	}
	if s.products != nil {
		product, err := s.products.GetProduct(ctx, catalogdomain.ProductKey{ID: template.ProductID, BusinessAreaID: template.BusinessAreaID})
		if err != nil {
			if errors.Is(err, catalogports.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d: %w", ErrUnknownReference, template.ProductID, err)
			}
			return nil, err
		}
		if product.IsGood() {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrNotBookable)
		}
	}
	return s.repo.SaveTemplate(ctx, template)
}

func (s *Service) ListTemplates(ctx context.Context, filter ports.TemplateFilter) ([]domain.Template, error) {
	return s.repo.ListTemplates(ctx, filter)
}

func (s *Service) GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: schedule id must be positive", ErrInvalidInput)
	}
	return s.repo.GetSchedule(ctx, id)
}

// ListSchedules returns the schedules starting within the local calendar day.
func (s *Service) ListSchedules(ctx context.Context, input ports.ListInput) ([]domain.Schedule, error) {
	if input.BusinessAreaID <= 0 {
		return nil, mapError(domain.ErrInvalidBusinessArea)
	}
	if input.ProductID <= 0 {
		return nil, mapError(domain.ErrInvalidProduct)
	}
	loc, err := s.location(ctx, input.BusinessAreaID, input.Timezone)
	if err != nil {
		return nil, err
	}
	from, to, err := domain.DayBounds(input.Date, loc)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.ListSchedules(ctx, ports.ScheduleFilter{
		BusinessAreaID: input.BusinessAreaID,
		ProductID:      input.ProductID,
		From:           from,
		To:             to,
	})
}

// GenerateSchedules instantiates every active template for the day. Slots that
// already exist are skipped, so repeated runs converge.
func (s *Service) GenerateSchedules(ctx context.Context, input ports.GenerateInput) (*ports.GenerateResult, error) {
	if input.BusinessAreaID <= 0 {
		return nil, mapError(domain.ErrInvalidBusinessArea)
	}
	if input.ProductID <= 0 {
		return nil, mapError(domain.ErrInvalidProduct)
	}
	loc, err := s.location(ctx, input.BusinessAreaID, input.Timezone)
	if err != nil {
		return nil, err
	}
	from, to, err := domain.DayBounds(input.Date, loc)
	if err != nil {
		return nil, mapError(err)
	}
	templates, err := s.repo.ListTemplates(ctx, ports.TemplateFilter{
		BusinessAreaID: input.BusinessAreaID,
		ProductID:      input.ProductID,
		ActiveOnly:     true,
	})
	if err != nil {
		return nil, err
	}
	day := from.In(loc)
	instances := make([]domain.Schedule, 0, len(templates))
	seen := make(map[domain.SlotKey]struct{}, len(templates))
	for _, tpl := range templates {
		schedule := tpl.Instantiate(day, loc)
		if _, dup := seen[schedule.SlotKey()]; dup {
			continue
		}
		seen[schedule.SlotKey()] = struct{}{}
		instances = append(instances, schedule)
	}
	created, err := s.repo.InsertSchedules(ctx, instances)
	if err != nil {
		return nil, err
	}
	schedules, err := s.repo.ListSchedules(ctx, ports.ScheduleFilter{
		BusinessAreaID: input.BusinessAreaID,
		ProductID:      input.ProductID,
		From:           from,
		To:             to,
	})
	if err != nil {
		return nil, err
	}
	return &ports.GenerateResult{
		Created:   len(created),
		Skipped:   len(templates) - len(created),
		Schedules: schedules,
	}, nil
}

// location resolves the request zone, then the area's zone, then the default.
func (s *Service) location(ctx context.Context, areaID int64, zone string) (*time.Location, error) {
	area, err := s.area(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if zone == "" && area != nil {
		zone = area.Timezone
	}
	loc, err := domain.LoadLocation(zone, s.defaultTimezone)
	if err != nil {
		return nil, mapError(err)
	}
	return loc, nil
}

func (s *Service) area(ctx context.Context, id int64) (*masterdomain.BusinessArea, error) {
	if s.areas == nil {
		return nil, nil
	}
	area, err := s.areas.Get(ctx, id)
	if err != nil {
		if errors.Is(err, masterports.ErrNotFound) {
			return nil, fmt.Errorf("%w: business area %d: %w", ErrUnknownReference, id, err)
		}
		return nil, err
	}
	return area, nil
}

var _ ports.Service = (*Service)(nil)
