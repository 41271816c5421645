package ports

import (
	"context"
	"errors"
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
)

var (
	ErrNotFound          = errors.New("identity record not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateRole     = errors.New("role name already taken")
	// ErrSessionNotFound covers unknown and expired tokens alike.
	ErrSessionNotFound = errors.New("session not found or expired")
	// ErrSessionConflict signals a serialization failure while sliding a session; retry.
	ErrSessionConflict = errors.New("session update conflict")
)

// Repository persists users and roles.
type Repository interface {
	SaveUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SaveRole(ctx context.Context, role *domain.Role) (*domain.Role, error)
	GetRole(ctx context.Context, id int64) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	// ValidateAndExtend atomically checks the token at now, moves its expiry
	// to now+ttl and loads the owning user and role.
	ValidateAndExtend(ctx context.Context, token string, now time.Time, ttl time.Duration) (*domain.Principal, error)
	Delete(ctx context.Context, token string) error
	// PurgeExpired deletes sessions expiring at or before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
