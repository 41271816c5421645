package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/application"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
)

const tracerName = "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/observability/service"

// Service decorates the identity service. Tokens and passwords never reach logs.
type Service struct {
	inner  ports.Service
	tracer trace.Tracer
	logger *slog.Logger
	logins metric.Int64Counter
	purged metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.logins, _ = m.Int64Counter("identity.service.logins", metric.WithDescription("Login attempts by outcome"))
		s.purged, _ = m.Int64Counter("identity.service.sessions_purged", metric.WithDescription("Expired sessions deleted"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{inner: inner}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Login", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()

	result, err := s.inner.Login(ctx, username, password)
	if err != nil {
		s.count(ctx, s.logins, attribute.String("outcome", "rejected"))
		return nil, s.handleError(ctx, span, err, "login failed", slog.String("username", username))
	}
	s.count(ctx, s.logins, attribute.String("outcome", "ok"))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user logged in",
		slog.Int64("user.id", result.Principal.User.ID),
		slog.String("role", result.Principal.Role.Name))
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "Service.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "Service.Authenticate")
	defer span.End()
	principal, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "session rejected")
	}
	span.SetAttributes(attribute.Int64("user.id", principal.User.ID))
	return principal, nil
}

func (s *Service) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Service.CreateUser", trace.WithAttributes(attribute.String("user.username", input.Username)))
	defer span.End()
	user, err := s.inner.CreateUser(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create user", slog.String("username", input.Username))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "user created", slog.Int64("user.id", user.ID), slog.Int64("role.id", user.RoleID))
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListUsers")
	defer span.End()
	users, err := s.inner.ListUsers(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	return users, nil
}

func (s *Service) CreateRole(ctx context.Context, input ports.CreateRoleInput) (*domain.Role, error) {
	ctx, span := s.tracer.Start(ctx, "Service.CreateRole", trace.WithAttributes(attribute.String("role.name", input.Name)))
	defer span.End()
	role, err := s.inner.CreateRole(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create role", slog.String("role", input.Name))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "role created", slog.Int64("role.id", role.ID), slog.Any("permissions", input.Permissions))
	return role, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]domain.Role, error) {
	ctx, span := s.tracer.Start(ctx, "Service.ListRoles")
	defer span.End()
	roles, err := s.inner.ListRoles(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list roles")
	}
	return roles, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "Service.PurgeExpiredSessions")
	defer span.End()
	n, err := s.inner.PurgeExpiredSessions(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge sessions")
	}
	if s.purged != nil {
		s.purged.Add(ctx, n)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "expired sessions purged", slog.Int64("count", n))
	return n, nil
}

func (s *Service) count(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	level := slog.LevelError
	if errors.Is(err, application.ErrAuthentication) ||
		errors.Is(err, application.ErrInvalidInput) ||
		errors.Is(err, application.ErrConflict) ||
		errors.Is(err, application.ErrNotFound) {
		level = slog.LevelWarn
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

var _ ports.Service = (*Service)(nil)
