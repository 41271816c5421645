package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
)

// Service implements master data CRUD.
type Service struct {
	repos ports.Repositories
}

func NewService(repos ports.Repositories) *Service {
	return &Service{repos: repos}
}

type entityPtr[T any] interface {
	*T
	domain.Entity
}

func create[T any, P entityPtr[T]](ctx context.Context, repo ports.Repository[T], entity P) (*T, error) {
	if entity == nil {
		return nil, errors.New("entity is nil")
	}
	entity.AssignID(0)
	if err := entity.Validate(); err != nil {
		return nil, mapError(err)
	}
	return repo.Save(ctx, (*T)(entity))
}

func update[T any, P entityPtr[T]](ctx context.Context, repo ports.Repository[T], id int64, entity P) (*T, error) {
	if entity == nil {
		return nil, errors.New("entity is nil")
	}
	if _, err := repo.Get(ctx, id); err != nil {
		return nil, err
	}
	entity.AssignID(id)
	if err := entity.Validate(); err != nil {
		return nil, mapError(err)
	}
	return repo.Save(ctx, (*T)(entity))
}

func (s *Service) CreateBusinessArea(ctx context.Context, area *domain.BusinessArea) (*domain.BusinessArea, error) {
	if area != nil && area.ID == 0 {
		area.IsActive = true
	}
	return create(ctx, s.repos.BusinessAreas, area)
}

func (s *Service) UpdateBusinessArea(ctx context.Context, id int64, area *domain.BusinessArea) (*domain.BusinessArea, error) {
	return update(ctx, s.repos.BusinessAreas, id, area)
}

func (s *Service) GetBusinessArea(ctx context.Context, id int64) (*domain.BusinessArea, error) {
	return s.repos.BusinessAreas.Get(ctx, id)
}

func (s *Service) ListBusinessAreas(ctx context.Context) ([]domain.BusinessArea, error) {
	return s.repos.BusinessAreas.List(ctx, ports.Filter{})
}

func (s *Service) CreatePaymentMethod(ctx context.Context, method *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	return create(ctx, s.repos.PaymentMethods, method)
}

func (s *Service) UpdatePaymentMethod(ctx context.Context, id int64, method *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	return update(ctx, s.repos.PaymentMethods, id, method)
}

func (s *Service) GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	return s.repos.PaymentMethods.Get(ctx, id)
}

func (s *Service) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	return s.repos.PaymentMethods.List(ctx, ports.Filter{})
}

func (s *Service) CreateReferralType(ctx context.Context, referral *domain.ReferralType) (*domain.ReferralType, error) {
	return create(ctx, s.repos.ReferralTypes, referral)
}

func (s *Service) UpdateReferralType(ctx context.Context, id int64, referral *domain.ReferralType) (*domain.ReferralType, error) {
	return update(ctx, s.repos.ReferralTypes, id, referral)
}

func (s *Service) GetReferralType(ctx context.Context, id int64) (*domain.ReferralType, error) {
	return s.repos.ReferralTypes.Get(ctx, id)
}

func (s *Service) ListReferralTypes(ctx context.Context) ([]domain.ReferralType, error) {
	return s.repos.ReferralTypes.List(ctx, ports.Filter{})
}

func (s *Service) CreatePatient(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	if err := s.checkPatientReferences(ctx, patient); err != nil {
		return nil, err
	}
	return create(ctx, s.repos.Patients, patient)
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, patient *domain.Patient) (*domain.Patient, error) {
	if err := s.checkPatientReferences(ctx, patient); err != nil {
		return nil, err
	}
	return update(ctx, s.repos.Patients, id, patient)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	return s.repos.Patients.Get(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, filter ports.Filter) ([]domain.Patient, error) {
	return s.repos.Patients.List(ctx, filter)
}

func (s *Service) CreateEmployee(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	if employee != nil {
		if err := s.checkArea(ctx, employee.BusinessAreaID); err != nil {
			return nil, err
		}
		employee.IsActive = true
	}
	return create(ctx, s.repos.Employees, employee)
}

func (s *Service) UpdateEmployee(ctx context.Context, id int64, employee *domain.Employee) (*domain.Employee, error) {
	if employee != nil {
		if err := s.checkArea(ctx, employee.BusinessAreaID); err != nil {
			return nil, err
		}
	}
	return update(ctx, s.repos.Employees, id, employee)
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.repos.Employees.Get(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context, filter ports.Filter) ([]domain.Employee, error) {
	return s.repos.Employees.List(ctx, filter)
}

func (s *Service) checkPatientReferences(ctx context.Context, patient *domain.Patient) error {
	if patient == nil {
		return nil
	}
	if err := s.checkArea(ctx, patient.BusinessAreaID); err != nil {
		return err
	}
	if patient.ReferralTypeID == nil {
		return nil
	}
	if _, err := s.repos.ReferralTypes.Get(ctx, *patient.ReferralTypeID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("%w: referral type %d", ErrUnknownReference, *patient.ReferralTypeID)
		}
		return err
	}
	return nil
}

func (s *Service) checkArea(ctx context.Context, areaID int64) error {
	if areaID <= 0 {
		return mapError(domain.ErrInvalidBusinessArea)
	}
	if _, err := s.repos.BusinessAreas.Get(ctx, areaID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return fmt.Errorf("%w: business area %d", ErrUnknownReference, areaID)
		}
		return err
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
