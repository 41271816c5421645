package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
)

// Repository persists one master data table through GORM. R is the record type.
type Repository[T any, R any] struct {
	db         *gorm.DB
	areaColumn string
	toRecord   func(*T) R
	toDomain   func(*R) T
	recordID   func(*R) int64
}

// NewRepositories wires PostgreSQL-backed master data repositories. Caller manages DB lifecycle.
func NewRepositories(db *gorm.DB) ports.Repositories {
	return ports.Repositories{
		BusinessAreas: &Repository[domain.BusinessArea, businessAreaRecord]{
			db: db, toRecord: businessAreaToRecord, toDomain: (*businessAreaRecord).toDomain,
			recordID: func(r *businessAreaRecord) int64 { return r.ID },
		},
		PaymentMethods: &Repository[domain.PaymentMethod, paymentMethodRecord]{
			db: db, toRecord: paymentMethodToRecord, toDomain: (*paymentMethodRecord).toDomain,
			recordID: func(r *paymentMethodRecord) int64 { return r.ID },
		},
		ReferralTypes: &Repository[domain.ReferralType, referralTypeRecord]{
			db: db, toRecord: referralTypeToRecord, toDomain: (*referralTypeRecord).toDomain,
			recordID: func(r *referralTypeRecord) int64 { return r.ID },
		},
		Patients: &Repository[domain.Patient, patientRecord]{
			db: db, areaColumn: "business_area_id", toRecord: patientToRecord, toDomain: (*patientRecord).toDomain,
			recordID: func(r *patientRecord) int64 { return r.ID },
		},
		Employees: &Repository[domain.Employee, employeeRecord]{
			db: db, areaColumn: "business_area_id", toRecord: employeeToRecord, toDomain: (*employeeRecord).toDomain,
			recordID: func(r *employeeRecord) int64 { return r.ID },
		},
	}
}

func (r *Repository[T, R]) Get(ctx context.Context, id int64) (*T, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record R
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	entity := r.toDomain(&record)
	return &entity, nil
}

func (r *Repository[T, R]) List(ctx context.Context, filter ports.Filter) ([]T, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("id ASC")
	if filter.BusinessAreaID > 0 && r.areaColumn != "" {
		query = query.Where(r.areaColumn+" = ?", filter.BusinessAreaID)
	}
	var records []R
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for i := range records {
		out = append(out, r.toDomain(&records[i]))
	}
	return out, nil
}

// Save inserts a record without an id, otherwise replaces every column of the existing row.
func (r *Repository[T, R]) Save(ctx context.Context, entity *T) (*T, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, errors.New("entity is nil")
	}
	record := r.toRecord(entity)
	id := r.recordID(&record)
	if id == 0 {
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, err
		}
		return r.Get(ctx, r.recordID(&record))
	}
	result := r.db.WithContext(ctx).Model(&record).Where("id = ?", id).Select("*").Omit("id", "created_at").Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository[T, R]) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres master data repository not configured")
	}
	return nil
}

// Models lists the master data tables for migrations.
func Models() []any {
	return []any{
		&businessAreaRecord{},
		&paymentMethodRecord{},
		&referralTypeRecord{},
		&patientRecord{},
		&employeeRecord{},
	}
}

type businessAreaRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:255"`
	Address   string    `gorm:"column:address"`
	Timezone  string    `gorm:"column:timezone;size:64"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (businessAreaRecord) TableName() string { return "business_areas" }

func businessAreaToRecord(a *domain.BusinessArea) businessAreaRecord {
	return businessAreaRecord{ID: a.ID, Name: a.Name, Address: a.Address, Timezone: a.Timezone, IsActive: a.IsActive}
}

func (r *businessAreaRecord) toDomain() domain.BusinessArea {
	return domain.BusinessArea{ID: r.ID, Name: r.Name, Address: r.Address, Timezone: r.Timezone, IsActive: r.IsActive}
}

type paymentMethodRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:255"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (paymentMethodRecord) TableName() string { return "payment_methods" }

func paymentMethodToRecord(p *domain.PaymentMethod) paymentMethodRecord {
	return paymentMethodRecord{ID: p.ID, Name: p.Name, IsActive: p.IsActive}
}

func (r *paymentMethodRecord) toDomain() domain.PaymentMethod {
	return domain.PaymentMethod{ID: r.ID, Name: r.Name, IsActive: r.IsActive}
}

type referralTypeRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:255"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (referralTypeRecord) TableName() string { return "referral_types" }

func referralTypeToRecord(r *domain.ReferralType) referralTypeRecord {
	return referralTypeRecord{ID: r.ID, Name: r.Name}
}

func (r *referralTypeRecord) toDomain() domain.ReferralType {
	return domain.ReferralType{ID: r.ID, Name: r.Name}
}

type patientRecord struct {
	ID             int64      `gorm:"primaryKey;column:id"`
	BusinessAreaID int64      `gorm:"column:business_area_id;index"`
	Name           string     `gorm:"column:name;size:255"`
	Phone          string     `gorm:"column:phone;size:32"`
	BirthDate      *time.Time `gorm:"column:birth_date;type:date"`
	ReferralTypeID *int64     `gorm:"column:referral_type_id"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (patientRecord) TableName() string { return "patients" }

func patientToRecord(p *domain.Patient) patientRecord {
	return patientRecord{
		ID:             p.ID,
		BusinessAreaID: p.BusinessAreaID,
		Name:           p.Name,
		Phone:          p.Phone,
		BirthDate:      p.BirthDate,
		ReferralTypeID: p.ReferralTypeID,
	}
}

func (r *patientRecord) toDomain() domain.Patient {
	return domain.Patient{
		ID:             r.ID,
		BusinessAreaID: r.BusinessAreaID,
		Name:           r.Name,
		Phone:          r.Phone,
		BirthDate:      r.BirthDate,
		ReferralTypeID: r.ReferralTypeID,
	}
}

type employeeRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	BusinessAreaID int64     `gorm:"column:business_area_id;index"`
	Name           string    `gorm:"column:name;size:255"`
	Position       string    `gorm:"column:position;size:128"`
	Phone          string    `gorm:"column:phone;size:32"`
	IsActive       bool      `gorm:"column:is_active"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (employeeRecord) TableName() string { return "employees" }

func employeeToRecord(e *domain.Employee) employeeRecord {
	return employeeRecord{
		ID:             e.ID,
		BusinessAreaID: e.BusinessAreaID,
		Name:           e.Name,
		Position:       e.Position,
		Phone:          e.Phone,
		IsActive:       e.IsActive,
	}
}

func (r *employeeRecord) toDomain() domain.Employee {
	return domain.Employee{
		ID:             r.ID,
		BusinessAreaID: r.BusinessAreaID,
		Name:           r.Name,
		Position:       r.Position,
		Phone:          r.Phone,
		IsActive:       r.IsActive,
	}
}
