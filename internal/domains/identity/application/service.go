package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/shared/retry"
)

// DefaultSessionTTL is the sliding session lifetime.
const DefaultSessionTTL = 24 * time.Hour

// Service implements login, session validation and account management.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	ttl      time.Duration
	retry    retry.Policy
	now      func() time.Time
	newToken func() string
}

type Option func(*Service)

// WithSessionTTL overrides the sliding session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRetryPolicy overrides the retry policy of the session sliding update.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Service) { s.retry = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		sessions: sessions,
		ttl:      DefaultSessionTTL,
		retry:    retry.Default,
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration { return s.ttl }

func (s *Service) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	role, err := s.repo.GetRole(ctx, user.RoleID)
	if err != nil {
		return nil, mapError(err)
	}

	now := s.now()
	session := domain.Session{
		Token:     s.newToken(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return &ports.LoginResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Principal: &domain.Principal{User: *user, Role: *role, SessionID: session.Token, ExpiresAt: session.ExpiresAt},
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate validates token and slides its expiry. Serialization
// conflicts between concurrent requests of the same session are retried.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	var principal *domain.Principal
	err := retry.Do(ctx, s.retry,
		func(err error) bool { return errors.Is(err, ports.ErrSessionConflict) },
		func(ctx context.Context) error {
			p, err := s.sessions.ValidateAndExtend(ctx, token, s.now(), s.ttl)
			if err != nil {
				return err
			}
			principal = p
			return nil
		})
	if err != nil {
		return nil, mapError(err)
	}
	if !principal.User.IsActive {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	return principal, nil
}

func (s *Service) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	user := &domain.User{
		Username:       input.Username,
		FullName:       input.FullName,
		RoleID:         input.RoleID,
		BusinessAreaID: input.BusinessAreaID,
		IsActive:       true,
		CreatedAt:      s.now(),
	}
	if err := user.Validate(); err != nil {
		return nil, mapError(err)
	}
	if _, err := s.repo.GetRole(ctx, user.RoleID); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidRole)
		}
		return nil, err
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.SaveUser(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

func (s *Service) CreateRole(ctx context.Context, input ports.CreateRoleInput) (*domain.Role, error) {
	role := &domain.Role{Name: input.Name}
	for _, p := range input.Permissions {
		role.Permissions = append(role.Permissions, domain.Permission(p))
	}
	if err := role.Validate(); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.SaveRole(ctx, role)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return roles, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, s.now())
}

var _ ports.Service = (*Service)(nil)
