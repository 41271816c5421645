package ports

import (
	"context"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
)

// Service exposes master data use cases.
type Service interface {
	CreateBusinessArea(ctx context.Context, area *domain.BusinessArea) (*domain.BusinessArea, error)
	UpdateBusinessArea(ctx context.Context, id int64, area *domain.BusinessArea) (*domain.BusinessArea, error)
	GetBusinessArea(ctx context.Context, id int64) (*domain.BusinessArea, error)
	ListBusinessAreas(ctx context.Context) ([]domain.BusinessArea, error)

	CreatePaymentMethod(ctx context.Context, method *domain.PaymentMethod) (*domain.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id int64, method *domain.PaymentMethod) (*domain.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id int64) (*domain.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)

	CreateReferralType(ctx context.Context, referral *domain.ReferralType) (*domain.ReferralType, error)
	UpdateReferralType(ctx context.Context, id int64, referral *domain.ReferralType) (*domain.ReferralType, error)
	GetReferralType(ctx context.Context, id int64) (*domain.ReferralType, error)
	ListReferralTypes(ctx context.Context) ([]domain.ReferralType, error)

	CreatePatient(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)
	UpdatePatient(ctx context.Context, id int64, patient *domain.Patient) (*domain.Patient, error)
	GetPatient(ctx context.Context, id int64) (*domain.Patient, error)
	ListPatients(ctx context.Context, filter Filter) ([]domain.Patient, error)

	CreateEmployee(ctx context.Context, employee *domain.Employee) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, employee *domain.Employee) (*domain.Employee, error)
	GetEmployee(ctx context.Context, id int64) (*domain.Employee, error)
	ListEmployees(ctx context.Context, filter Filter) ([]domain.Employee, error)
}
