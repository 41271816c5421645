package memory

import (
	"context"
	"errors"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
)

// Tables shared with other in-memory adapters.
var (
	Templates = memdb.NewTable[int64, domain.Template]("schedule_templates")
	Schedules = memdb.NewTable[int64, domain.Schedule]("schedules")
	// Slots enforces one schedule per product, area and start time.
	Slots = memdb.NewTable[domain.SlotKey, int64]("schedule_slots")
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory schedule adapter.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveTemplate(_ context.Context, template *domain.Template) (*domain.Template, error) {
	if template == nil {
		return nil, errors.New("template is nil")
	}
	clone := *template
	err := r.db.Update(func(tx *memdb.Tx) error {
		if clone.ID == 0 {
			clone.ID = tx.NextID(Templates.Name())
		} else if _, ok := Templates.Get(tx, clone.ID); !ok {
			return ports.ErrNotFound
		}
		Templates.Put(tx, clone.ID, clone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) ListTemplates(_ context.Context, filter ports.TemplateFilter) ([]domain.Template, error) {
	var list []domain.Template
	_ = r.db.View(func(tx *memdb.Tx) error {
		list = Templates.Filter(tx, func(t domain.Template) bool {
			if filter.BusinessAreaID > 0 && t.BusinessAreaID != filter.BusinessAreaID {
				return false
			}
			if filter.ProductID > 0 && t.ProductID != filter.ProductID {
				return false
			}
			return !filter.ActiveOnly || t.IsActive
		}, func(a, b domain.Template) bool {
			if a.StartTime != b.StartTime {
				return a.StartTime.Minutes() < b.StartTime.Minutes()
			}
			return a.ID < b.ID
		})
		return nil
	})
	return list, nil
}

func (r *Repository) GetSchedule(_ context.Context, id int64) (*domain.Schedule, error) {
	var (
		schedule domain.Schedule
		ok       bool
	)
	_ = r.db.View(func(tx *memdb.Tx) error {
		schedule, ok = Schedules.Get(tx, id)
		return nil
	})
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &schedule, nil
}

func (r *Repository) ListSchedules(_ context.Context, filter ports.ScheduleFilter) ([]domain.Schedule, error) {
	var list []domain.Schedule
	_ = r.db.View(func(tx *memdb.Tx) error {
		list = Schedules.Filter(tx, func(s domain.Schedule) bool {
			if filter.BusinessAreaID > 0 && s.BusinessAreaID != filter.BusinessAreaID {
				return false
			}
			if filter.ProductID > 0 && s.ProductID != filter.ProductID {
				return false
			}
			if !filter.From.IsZero() && s.StartTime.Before(filter.From) {
				return false
			}
			return filter.To.IsZero() || s.StartTime.Before(filter.To)
		}, func(a, b domain.Schedule) bool {
			if !a.StartTime.Equal(b.StartTime) {
				return a.StartTime.Before(b.StartTime)
			}
			return a.ID < b.ID
		})
		return nil
	})
	return list, nil
}

func (r *Repository) InsertSchedules(_ context.Context, schedules []domain.Schedule) ([]domain.Schedule, error) {
	created := make([]domain.Schedule, 0, len(schedules))
	err := r.db.Update(func(tx *memdb.Tx) error {
		for _, s := range schedules {
			key := s.SlotKey()
			if _, exists := Slots.Get(tx, key); exists {
				continue
			}
			s.ID = tx.NextID(Schedules.Name())
			Schedules.Put(tx, s.ID, s)
			Slots.Put(tx, key, s.ID)
			created = append(created, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReserveTx takes n units from schedule id inside an existing transaction.
func ReserveTx(tx *memdb.Tx, id, n int64) (domain.Schedule, error) {
	s, ok := Schedules.Get(tx, id)
	if !ok {
		return domain.Schedule{}, ports.ErrNotFound
	}
	if err := s.Reserve(n); err != nil {
		return domain.Schedule{}, err
	}
	Schedules.Put(tx, id, s)
	return s, nil
}

// ReleaseTx returns n units to schedule id inside an existing transaction.
func ReleaseTx(tx *memdb.Tx, id, n int64) (domain.Schedule, error) {
	s, ok := Schedules.Get(tx, id)
	if !ok {
		return domain.Schedule{}, ports.ErrNotFound
	}
	if err := s.Release(n); err != nil {
		return domain.Schedule{}, err
	}
	Schedules.Put(tx, id, s)
	return s, nil
}
