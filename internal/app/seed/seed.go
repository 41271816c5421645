// Package seed loads the administrator account and a small demo catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	catalogdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/domain"
	catalogports "github.com/ignasiusberneo/clinic-admin/internal/domains/catalog/ports"
	identitydomain "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	identityports "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
	masterdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	masterports "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/ports"
	scheduledomain "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/domain"
	scheduleports "github.com/ignasiusberneo/clinic-admin/internal/domains/schedules/ports"
)

// Services are the application services seeding writes through, so every
// record passes the same validation as the API.
type Services struct {
	Identity  identityports.Service
	Master    masterports.Service
	Catalog   catalogports.Service
	Schedules scheduleports.Service
}

// ErrAlreadySeeded is returned when accounts already exist.
var ErrAlreadySeeded = errors.New("database already has user accounts")

// Options names the administrator account.
type Options struct {
	AdminUsername string
	AdminPassword string
	Timezone      string
}

// Result lists what Run created.
type Result struct {
	AdminUserID    int64
	BusinessAreaID int64
	ServiceID      int64
	ProductID      int64
}

// Run creates the admin role and user, one business area, payment methods,
// referral types, a bookable therapy with a consumable and its daily templates.
// It refuses to touch a database that already has users.
func Run(ctx context.Context, services Services, opts Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.AdminUsername == "" {
		opts.AdminUsername = "admin"
	}
	if opts.Timezone == "" {
		opts.Timezone = masterdomain.DefaultTimezone
	}
	users, err := services.Identity.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return nil, ErrAlreadySeeded
	}

	role, err := services.Identity.CreateRole(ctx, identityports.CreateRoleInput{
		Name: "admin", Permissions: []string{string(identitydomain.PermAll)},
	})
	if err != nil {
		return nil, fmt.Errorf("create admin role: %w", err)
	}
	if _, err := services.Identity.CreateRole(ctx, identityports.CreateRoleInput{
		Name: "kasir",
		Permissions: []string{
			string(identitydomain.PermOrdersRead), string(identitydomain.PermOrdersCreate),
			string(identitydomain.PermOrdersPay), string(identitydomain.PermSchedulesRead),
			string(identitydomain.PermCatalogRead), string(identitydomain.PermMasterdataRead),
		},
	}); err != nil {
		return nil, fmt.Errorf("create cashier role: %w", err)
	}
	admin, err := services.Identity.CreateUser(ctx, identityports.CreateUserInput{
		Username: opts.AdminUsername, FullName: "Administrator", Password: opts.AdminPassword, RoleID: role.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}

	area, err := services.Master.CreateBusinessArea(ctx, &masterdomain.BusinessArea{
		Name: "Klinik Utama", Address: "Jl. Sudirman No. 1", Timezone: opts.Timezone, IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create business area: %w", err)
	}
	for _, name := range []string{"Tunai", "Transfer Bank", "QRIS"} {
		if _, err := services.Master.CreatePaymentMethod(ctx, &masterdomain.PaymentMethod{Name: name, IsActive: true}); err != nil {
			return nil, fmt.Errorf("create payment method %s: %w", name, err)
		}
	}
	for _, name := range []string{"Instagram", "Teman atau keluarga", "Dokter"} {
		if _, err := services.Master.CreateReferralType(ctx, &masterdomain.ReferralType{Name: name}); err != nil {
			return nil, fmt.Errorf("create referral type %s: %w", name, err)
		}
	}

	therapy, err := services.Catalog.CreateProduct(ctx, &catalogdomain.Product{
		BusinessAreaID: area.ID, Name: "Terapi Oksigen Hiperbarik", Type: catalogdomain.ProductTypeService,
		Tariff: 150000, SmallUnitTariff: 150000, UnitConversion: 1, IsActive: true, IsSale: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create therapy product: %w", err)
	}
	mask, err := services.Catalog.CreateProduct(ctx, &catalogdomain.Product{
		BusinessAreaID: area.ID, Name: "Masker Oksigen", Type: catalogdomain.ProductTypeGood,
		LargeUnit: "box", SmallUnit: "pcs", Tariff: 50000, SmallUnitTariff: 5000, UnitConversion: 10,
		IsActive: true, IsSale: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumable product: %w", err)
	}
	if _, err := services.Catalog.AdjustStock(ctx, mask.Key(), 200); err != nil {
		return nil, fmt.Errorf("stock consumable: %w", err)
	}
	service, err := services.Catalog.CreateService(ctx, &catalogdomain.Service{
		Name: "Paket Terapi Oksigen", Price: 150000, IsActive: true,
		Products: []catalogdomain.ServiceProduct{
			{ProductID: therapy.ID, ProductBusinessAreaID: area.ID, Quantity: 1, UnitType: catalogdomain.UnitLarge},
			{ProductID: mask.ID, ProductBusinessAreaID: area.ID, Quantity: 1, UnitType: catalogdomain.UnitSmall},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	for hour := 9; hour < 16; hour++ {
		if hour == 12 {
			continue
		}
		_, err := services.Schedules.CreateTemplate(ctx, &scheduledomain.Template{
			ProductID:      therapy.ID,
			BusinessAreaID: area.ID,
			StartTime:      scheduledomain.TimeOfDay{Hour: hour},
			EndTime:        scheduledomain.TimeOfDay{Hour: hour + 1},
			MaxQuota:       4,
		})
		if err != nil {
			return nil, fmt.Errorf("create template %02d:00: %w", hour, err)
		}
	}

	logger.Info("seed data created",
		slog.String("admin", admin.Username),
		slog.Int64("business_area_id", area.ID),
		slog.Int64("service_id", service.ID))
	return &Result{
		AdminUserID:    admin.ID,
		BusinessAreaID: area.ID,
		ServiceID:      service.ID,
		ProductID:      therapy.ID,
	}, nil
}
