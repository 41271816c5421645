package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists templates and schedules in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed schedule repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists the schedule tables for migrations.
func Models() []any {
	return []any{&TemplateRecord{}, &ScheduleRecord{}}
}

// TemplateRecord maps schedule_templates.
type TemplateRecord struct {
	ID             int64          `gorm:"primaryKey;column:id"`
	ProductID      int64          `gorm:"column:product_id;index:idx_template_product"`
	BusinessAreaID int64          `gorm:"column:business_area_id;index:idx_template_product"`
	StartTime      datatypes.Time `gorm:"column:start_time"`
	EndTime        datatypes.Time `gorm:"column:end_time"`
	MaxQuota       int64          `gorm:"column:max_quota"`
	IsActive       bool           `gorm:"column:is_active"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
}

func (TemplateRecord) TableName() string { return "schedule_templates" }

// ScheduleRecord maps schedules. The check constraint backs the quota CAS updates.
type ScheduleRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	ProductID      int64     `gorm:"column:product_id;uniqueIndex:idx_schedule_slot,priority:1"`
	BusinessAreaID int64     `gorm:"column:business_area_id;uniqueIndex:idx_schedule_slot,priority:2"`
	StartTime      time.Time `gorm:"column:start_time;uniqueIndex:idx_schedule_slot,priority:3"`
	EndTime        time.Time `gorm:"column:end_time"`
	MaxQuota       int64     `gorm:"column:max_quota"`
	RemainingQuota int64     `gorm:"column:remaining_quota;check:chk_schedules_quota,remaining_quota >= 0 AND remaining_quota <= max_quota"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (ScheduleRecord) TableName() string { return "schedules" }

func (r *Repository) SaveTemplate(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if template == nil {
		return nil, errors.New("template is nil")
	}
	record := templateToRecord(template)
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, err
	}
	saved := record.toDomain()
	return &saved, nil
}

func (r *Repository) ListTemplates(ctx context.Context, filter ports.TemplateFilter) ([]domain.Template, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("start_time ASC, id ASC")
	if filter.BusinessAreaID > 0 {
		query = query.Where("business_area_id = ?", filter.BusinessAreaID)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	var records []TemplateRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]domain.Template, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *Repository) GetSchedule(ctx context.Context, id int64) (*domain.Schedule, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	schedule, err := GetScheduleTx(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *Repository) ListSchedules(ctx context.Context, filter ports.ScheduleFilter) ([]domain.Schedule, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("start_time ASC, id ASC")
	if filter.BusinessAreaID > 0 {
		query = query.Where("business_area_id = ?", filter.BusinessAreaID)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if !filter.From.IsZero() {
		query = query.Where("start_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("start_time < ?", filter.To)
	}
	var records []ScheduleRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]domain.Schedule, 0, len(records))
	for i := range records {
		list = append(list, records[i].ToDomain())
	}
	return list, nil
}

// InsertSchedules inserts row by row with ON CONFLICT DO NOTHING so the
// affected-row count tells created slots from existing ones.
func (r *Repository) InsertSchedules(ctx context.Context, schedules []domain.Schedule) ([]domain.Schedule, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	created := make([]domain.Schedule, 0, len(schedules))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range schedules {
			record := scheduleToRecord(&schedules[i])
			record.ID = 0
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}, {Name: "business_area_id"}, {Name: "start_time"}},
				DoNothing: true,
			}).Create(&record)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				created = append(created, record.ToDomain())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetScheduleTx loads a schedule through tx.
func GetScheduleTx(tx *gorm.DB, id int64) (domain.Schedule, error) {
	var record ScheduleRecord
	if err := tx.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Schedule{}, ports.ErrNotFound
		}
		return domain.Schedule{}, err
	}
	return record.ToDomain(), nil
}

// ReserveTx atomically takes n units from schedule id. It fails with
// domain.ErrQuotaExhausted when fewer than n remain.
func ReserveTx(tx *gorm.DB, id, n int64) (domain.Schedule, error) {
	if n <= 0 {
		return domain.Schedule{}, domain.ErrInvalidUnits
	}
	var record ScheduleRecord
	result := tx.Model(&record).
		Clauses(clause.Returning{}).
		Where("id = ? AND remaining_quota >= ?", id, n).
		Updates(map[string]any{
			"remaining_quota": gorm.Expr("remaining_quota - ?", n),
			"updated_at":      gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return domain.Schedule{}, result.Error
	}
	if result.RowsAffected != 1 {
		return domain.Schedule{}, domain.ErrQuotaExhausted
	}
	return record.ToDomain(), nil
}

// ReleaseTx atomically returns n units to schedule id. It fails with
// domain.ErrQuotaOverflow when the release would exceed max quota.
func ReleaseTx(tx *gorm.DB, id, n int64) (domain.Schedule, error) {
	if n <= 0 {
		return domain.Schedule{}, domain.ErrInvalidUnits
	}
	var record ScheduleRecord
	result := tx.Model(&record).
		Clauses(clause.Returning{}).
		Where("id = ? AND remaining_quota + ? <= max_quota", id, n).
		Updates(map[string]any{
			"remaining_quota": gorm.Expr("remaining_quota + ?", n),
			"updated_at":      gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return domain.Schedule{}, result.Error
	}
	if result.RowsAffected != 1 {
		return domain.Schedule{}, domain.ErrQuotaOverflow
	}
	return record.ToDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres schedule repository not configured")
	}
	return nil
}

func templateToRecord(t *domain.Template) TemplateRecord {
	return TemplateRecord{
		ID:             t.ID,
		ProductID:      t.ProductID,
		BusinessAreaID: t.BusinessAreaID,
		StartTime:      datatypes.NewTime(t.StartTime.Hour, t.StartTime.Minute, 0, 0),
		EndTime:        datatypes.NewTime(t.EndTime.Hour, t.EndTime.Minute, 0, 0),
		MaxQuota:       t.MaxQuota,
		IsActive:       t.IsActive,
	}
}

func (r TemplateRecord) toDomain() domain.Template {
	return domain.Template{
		ID:             r.ID,
		ProductID:      r.ProductID,
		BusinessAreaID: r.BusinessAreaID,
		StartTime:      timeOfDay(r.StartTime),
		EndTime:        timeOfDay(r.EndTime),
		MaxQuota:       r.MaxQuota,
		IsActive:       r.IsActive,
	}
}

func timeOfDay(t datatypes.Time) domain.TimeOfDay {
	d := time.Duration(t)
	return domain.TimeOfDay{Hour: int(d / time.Hour), Minute: int(d%time.Hour) / int(time.Minute)}
}

func scheduleToRecord(s *domain.Schedule) ScheduleRecord {
	return ScheduleRecord{
		ID:             s.ID,
		ProductID:      s.ProductID,
		BusinessAreaID: s.BusinessAreaID,
		StartTime:      s.StartTime.UTC(),
		EndTime:        s.EndTime.UTC(),
		MaxQuota:       s.MaxQuota,
		RemainingQuota: s.RemainingQuota,
	}
}

// ToDomain maps the row to a domain schedule.
func (r ScheduleRecord) ToDomain() domain.Schedule {
	return domain.Schedule{
		ID:             r.ID,
		ProductID:      r.ProductID,
		BusinessAreaID: r.BusinessAreaID,
		StartTime:      r.StartTime.UTC(),
		EndTime:        r.EndTime.UTC(),
		MaxQuota:       r.MaxQuota,
		RemainingQuota: r.RemainingQuota,
	}
}
