package mapper

import (
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
)

// DateLayout formats patient birth dates.
const DateLayout = "2006-01-02"

// BusinessArea is both the request and the response shape of a business area.
type BusinessArea struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" binding:"required,max=255"`
	Address  string `json:"address"`
	Timezone string `json:"timezone" binding:"omitempty,timezone"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (b BusinessArea) ToDomain() *domain.BusinessArea {
	return &domain.BusinessArea{Name: b.Name, Address: b.Address, Timezone: b.Timezone, IsActive: boolOr(b.IsActive, true)}
}

func FromBusinessArea(b *domain.BusinessArea) BusinessArea {
	active := b.IsActive
	return BusinessArea{ID: b.ID, Name: b.Name, Address: b.Address, Timezone: b.Timezone, IsActive: &active}
}

// PaymentMethod is both the request and the response shape of a payment method.
type PaymentMethod struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" binding:"required,max=255"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (p PaymentMethod) ToDomain() *domain.PaymentMethod {
	return &domain.PaymentMethod{Name: p.Name, IsActive: boolOr(p.IsActive, true)}
}

func FromPaymentMethod(p *domain.PaymentMethod) PaymentMethod {
	active := p.IsActive
	return PaymentMethod{ID: p.ID, Name: p.Name, IsActive: &active}
}

// ReferralType is both the request and the response shape of a referral type.
type ReferralType struct {
	ID   int64  `json:"id"`
	Name string `json:"name" binding:"required,max=255"`
}

func (r ReferralType) ToDomain() *domain.ReferralType {
	return &domain.ReferralType{Name: r.Name}
}

func FromReferralType(r *domain.ReferralType) ReferralType {
	return ReferralType{ID: r.ID, Name: r.Name}
}

// Patient is both the request and the response shape of a patient.
type Patient struct {
	ID             int64  `json:"id"`
	BusinessAreaID int64  `json:"business_area_id" binding:"required,gt=0"`
	Name           string `json:"name" binding:"required,max=255"`
	Phone          string `json:"phone" binding:"max=32"`
	BirthDate      string `json:"birth_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	ReferralTypeID *int64 `json:"referral_type_id" binding:"omitempty,gt=0"`
}

func (p Patient) ToDomain() (*domain.Patient, error) {
	patient := &domain.Patient{
		BusinessAreaID: p.BusinessAreaID,
		Name:           p.Name,
		Phone:          p.Phone,
		ReferralTypeID: p.ReferralTypeID,
	}
	if p.BirthDate != "" {
		birth, err := time.Parse(DateLayout, p.BirthDate)
		if err != nil {
			return nil, err
		}
		patient.BirthDate = &birth
	}
	return patient, nil
}

func FromPatient(p *domain.Patient) Patient {
	out := Patient{
		ID:             p.ID,
		BusinessAreaID: p.BusinessAreaID,
		Name:           p.Name,
		Phone:          p.Phone,
		ReferralTypeID: p.ReferralTypeID,
	}
	if p.BirthDate != nil {
		out.BirthDate = p.BirthDate.Format(DateLayout)
	}
	return out
}

// Employee is both the request and the response shape of an employee.
type Employee struct {
	ID             int64  `json:"id"`
	BusinessAreaID int64  `json:"business_area_id" binding:"required,gt=0"`
	Name           string `json:"name" binding:"required,max=255"`
	Position       string `json:"position" binding:"max=128"`
	Phone          string `json:"phone" binding:"max=32"`
	IsActive       *bool  `json:"is_active,omitempty"`
}

func (e Employee) ToDomain() *domain.Employee {
	return &domain.Employee{
		BusinessAreaID: e.BusinessAreaID,
		Name:           e.Name,
		Position:       e.Position,
		Phone:          e.Phone,
		IsActive:       boolOr(e.IsActive, true),
	}
}

func FromEmployee(e *domain.Employee) Employee {
	active := e.IsActive
	return Employee{
		ID:             e.ID,
		BusinessAreaID: e.BusinessAreaID,
		Name:           e.Name,
		Position:       e.Position,
		Phone:          e.Phone,
		IsActive:       &active,
	}
}

// List converts a slice with the given per-item mapper.
func List[T, R any](items []T, convert func(*T) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, convert(&items[i]))
	}
	return out
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
