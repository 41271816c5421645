package domain

import (
	"errors"
	"strings"
	"time"
)

// DefaultTimezone is applied to business areas created without one.
const DefaultTimezone = "Asia/Jakarta"

var (
	ErrEmptyName           = errors.New("name is required")
	ErrInvalidTimezone     = errors.New("timezone is not a valid IANA location")
	ErrInvalidBusinessArea = errors.New("business area is required")
	ErrInvalidBirthDate    = errors.New("birth date cannot be in the future")
)

// Entity is implemented by every master data record.
type Entity interface {
	Identity() int64
	AssignID(id int64)
	Validate() error
}

// Scoped is implemented by records that belong to one business area.
type Scoped interface {
	AreaID() int64
}

// BusinessArea is a clinic location.
type BusinessArea struct {
	ID       int64
	Name     string
	Address  string
	Timezone string
	IsActive bool
}

func (b *BusinessArea) Identity() int64   { return b.ID }
func (b *BusinessArea) AssignID(id int64) { b.ID = id }

// Validate trims fields and applies the default timezone.
func (b *BusinessArea) Validate() error {
	b.Name = strings.TrimSpace(b.Name)
	b.Address = strings.TrimSpace(b.Address)
	b.Timezone = strings.TrimSpace(b.Timezone)
	if b.Name == "" {
		return ErrEmptyName
	}
	if b.Timezone == "" {
		b.Timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(b.Timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

// Location resolves the area timezone, falling back to DefaultTimezone.
func (b BusinessArea) Location() *time.Location {
	name := b.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PaymentMethod is a way an order can be paid (cash, transfer, QRIS, ...).
type PaymentMethod struct {
	ID       int64
	Name     string
	IsActive bool
}

func (p *PaymentMethod) Identity() int64   { return p.ID }
func (p *PaymentMethod) AssignID(id int64) { p.ID = id }

func (p *PaymentMethod) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// ReferralType records how a patient found the clinic.
type ReferralType struct {
	ID   int64
	Name string
}

func (r *ReferralType) Identity() int64   { return r.ID }
func (r *ReferralType) AssignID(id int64) { r.ID = id }

func (r *ReferralType) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Patient is a person receiving services at a business area.
type Patient struct {
	ID             int64
	BusinessAreaID int64
	Name           string
	Phone          string
	BirthDate      *time.Time
	ReferralTypeID *int64
}

func (p *Patient) Identity() int64   { return p.ID }
func (p *Patient) AssignID(id int64) { p.ID = id }
func (p *Patient) AreaID() int64     { return p.BusinessAreaID }

func (p *Patient) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.BusinessAreaID <= 0 {
		return ErrInvalidBusinessArea
	}
	if p.BirthDate != nil && p.BirthDate.After(time.Now()) {
		return ErrInvalidBirthDate
	}
	return nil
}

// Employee is a staff member working at a business area.
type Employee struct {
	ID             int64
	BusinessAreaID int64
	Name           string
	Position       string
	Phone          string
	IsActive       bool
}

func (e *Employee) Identity() int64   { return e.ID }
func (e *Employee) AssignID(id int64) { e.ID = id }
func (e *Employee) AreaID() int64     { return e.BusinessAreaID }

func (e *Employee) Validate() error {
	e.Name = strings.TrimSpace(e.Name)
	e.Position = strings.TrimSpace(e.Position)
	e.Phone = strings.TrimSpace(e.Phone)
	if e.Name == "" {
		return ErrEmptyName
	}
	if e.BusinessAreaID <= 0 {
		return ErrInvalidBusinessArea
	}
	return nil
}
