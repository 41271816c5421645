package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/memory"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
	"github.com/ignasiusberneo/clinic-admin/internal/shared/retry"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newIdentity(t *testing.T) (*Service, *clock, *domain.Role) {
	t.Helper()
	db := memdb.New()
	clk := &clock{now: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	svc := NewService(memory.NewRepository(db), memory.NewSessionStore(db),
		WithClock(clk.Now), WithSessionTTL(time.Hour))

	role, err := svc.CreateRole(context.Background(), ports.CreateRoleInput{
		Name: "kasir", Permissions: []string{"orders.read", "orders.pay"},
	})
	require.NoError(t, err)
	_, err = svc.CreateUser(context.Background(), ports.CreateUserInput{
		Username: "Siti", FullName: "Siti Aminah", Password: "rahasia123", RoleID: role.ID,
	})
	require.NoError(t, err)
	return svc, clk, role
}

func TestLogin_IssuesSlidingSession(t *testing.T) {
	svc, clk, _ := newIdentity(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, "siti", "rahasia123")
	require.NoError(t, err)
	assert.Len(t, result.Token, 36)
	assert.Equal(t, clk.now.Add(time.Hour), result.ExpiresAt)
	assert.True(t, result.Principal.Can(domain.PermOrdersPay))
	assert.False(t, result.Principal.Can(domain.PermOrdersCancel))

	clk.Advance(50 * time.Minute)
	principal, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "siti", principal.User.Username)
	assert.Equal(t, clk.now.Add(time.Hour), principal.ExpiresAt)

	clk.Advance(50 * time.Minute)
	_, err = svc.Authenticate(ctx, result.Token)
	require.NoError(t, err, "authenticating slides the expiry")

	clk.Advance(time.Hour)
	_, err = svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestLogin_RejectsBadCredentialsUniformly(t *testing.T) {
	svc, _, role := newIdentity(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "siti", "salah")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "rahasia123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	db := memdb.New()
	repo := memory.NewRepository(db)
	_, err = repo.SaveRole(ctx, &domain.Role{Name: role.Name, Permissions: role.Permissions})
	require.NoError(t, err)
	inactive := &domain.User{Username: "budi", RoleID: 1}
	require.NoError(t, inactive.SetPassword("rahasia123"))
	_, err = repo.SaveUser(ctx, inactive)
	require.NoError(t, err)
	other := NewService(repo, memory.NewSessionStore(db))
	_, err = other.Login(ctx, "budi", "rahasia123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	svc, _, _ := newIdentity(t)
	ctx := context.Background()
	result, err := svc.Login(ctx, "siti", "rahasia123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Token))
	_, err = svc.Authenticate(ctx, result.Token)
	require.ErrorIs(t, err, ErrAuthentication)
	require.NoError(t, svc.Logout(ctx, ""))
}

func TestPurgeExpiredSessions(t *testing.T) {
	svc, clk, _ := newIdentity(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, "siti", "rahasia123")
	require.NoError(t, err)
	clk.Advance(30 * time.Minute)
	fresh, err := svc.Login(ctx, "siti", "rahasia123")
	require.NoError(t, err)

	clk.Advance(45 * time.Minute)
	purged, err := svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
	_, err = svc.Authenticate(ctx, fresh.Token)
	require.NoError(t, err)
}

func TestCreateUserAndRole_Validation(t *testing.T) {
	svc, _, role := newIdentity(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, ports.CreateUserInput{Username: "siti", Password: "rahasia123", RoleID: role.ID})
	require.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreateUser(ctx, ports.CreateUserInput{Username: "dewi", Password: "pendek", RoleID: role.ID})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.CreateUser(ctx, ports.CreateUserInput{Username: "dewi", Password: "rahasia123", RoleID: 99})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateRole(ctx, ports.CreateRoleInput{Name: "kasir", Permissions: []string{"orders.read"}})
	require.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreateRole(ctx, ports.CreateRoleInput{Name: "aneh", Permissions: []string{"orders.delete"}})
	require.ErrorIs(t, err, ErrInvalidInput)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NotEmpty(t, users[0].PasswordHash)
	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

type flakySessions struct {
	ports.SessionStore
	failures int
	calls    int
}

func (f *flakySessions) ValidateAndExtend(ctx context.Context, token string, now time.Time, ttl time.Duration) (*domain.Principal, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, ports.ErrSessionConflict
	}
	return f.SessionStore.ValidateAndExtend(ctx, token, now, ttl)
}

func TestAuthenticate_RetriesSerializationConflicts(t *testing.T) {
	db := memdb.New()
	repo := memory.NewRepository(db)
	sessions := &flakySessions{SessionStore: memory.NewSessionStore(db), failures: 2}
	svc := NewService(repo, sessions, WithRetryPolicy(retry.Policy{Attempts: 3, Backoff: time.Millisecond}))
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, ports.CreateRoleInput{Name: "admin", Permissions: []string{"*"}})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, ports.CreateUserInput{Username: "admin", Password: "rahasia123", RoleID: role.ID})
	require.NoError(t, err)
	login, err := svc.Login(ctx, "admin", "rahasia123")
	require.NoError(t, err)

	principal, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.True(t, principal.Can(domain.PermUsersManage))
	assert.Equal(t, 3, sessions.calls)

	sessions.calls, sessions.failures = 0, 5
	_, err = svc.Authenticate(ctx, login.Token)
	require.ErrorIs(t, err, ports.ErrSessionConflict)
	assert.Equal(t, 3, sessions.calls)
}
