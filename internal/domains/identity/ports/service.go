package ports

import (
	"context"
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
)

// LoginResult carries the issued session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal *domain.Principal
}

// CreateUserInput registers a staff account.
type CreateUserInput struct {
	Username       string
	FullName       string
	Password       string
	RoleID         int64
	BusinessAreaID *int64
}

// CreateRoleInput defines a role.
type CreateRoleInput struct {
	Name        string
	Permissions []string
}

// Service exposes authentication, sessions and account management.
type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateRole(ctx context.Context, input CreateRoleInput) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}
