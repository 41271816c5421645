package memory

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/memdb"
)

var (
	Users     = memdb.NewTable[int64, domain.User]("users")
	Usernames = memdb.NewTable[string, int64]("users_by_username")
	Roles     = memdb.NewTable[int64, domain.Role]("roles")
	RoleNames = memdb.NewTable[string, int64]("roles_by_name")
	Sessions  = memdb.NewTable[string, domain.Session]("user_sessions")
)

var (
	_ ports.Repository   = (*Repository)(nil)
	_ ports.SessionStore = (*SessionStore)(nil)
)

// Repository is an in-memory user and role store.
type Repository struct {
	db *memdb.DB
}

func NewRepository(db *memdb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveUser(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	err := r.db.Update(func(tx *memdb.Tx) error {
		if owner, taken := Usernames.Get(tx, clone.Username); taken && owner != clone.ID {
			return ports.ErrDuplicateUsername
		}
		if clone.ID == 0 {
			clone.ID = tx.NextID(Users.Name())
		} else if prev, ok := Users.Get(tx, clone.ID); !ok {
			return ports.ErrNotFound
		} else if prev.Username != clone.Username {
			Usernames.Delete(tx, prev.Username)
		}
		Users.Put(tx, clone.ID, clone)
		Usernames.Put(tx, clone.Username, clone.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) GetUser(_ context.Context, id int64) (*domain.User, error) {
	var (
		user domain.User
		ok   bool
	)
	_ = r.db.View(func(tx *memdb.Tx) error {
		user, ok = Users.Get(tx, id)
		return nil
	})
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &user, nil
}

func (r *Repository) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	var (
		user domain.User
		ok   bool
	)
	_ = r.db.View(func(tx *memdb.Tx) error {
		var id int64
		if id, ok = Usernames.Get(tx, username); ok {
			user, ok = Users.Get(tx, id)
		}
		return nil
	})
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &user, nil
}

func (r *Repository) ListUsers(_ context.Context) ([]domain.User, error) {
	var users []domain.User
	_ = r.db.View(func(tx *memdb.Tx) error {
		users = Users.Filter(tx, nil, func(a, b domain.User) bool { return a.ID < b.ID })
		return nil
	})
	return users, nil
}

func (r *Repository) SaveRole(_ context.Context, role *domain.Role) (*domain.Role, error) {
	if role == nil {
		return nil, errors.New("role is nil")
	}
	clone := *role
	clone.Permissions = slices.Clone(role.Permissions)
	err := r.db.Update(func(tx *memdb.Tx) error {
		if owner, taken := RoleNames.Get(tx, clone.Name); taken && owner != clone.ID {
			return ports.ErrDuplicateRole
		}
		if clone.ID == 0 {
			clone.ID = tx.NextID(Roles.Name())
		} else if prev, ok := Roles.Get(tx, clone.ID); !ok {
			return ports.ErrNotFound
		} else if prev.Name != clone.Name {
			RoleNames.Delete(tx, prev.Name)
		}
		Roles.Put(tx, clone.ID, clone)
		RoleNames.Put(tx, clone.Name, clone.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *Repository) GetRole(_ context.Context, id int64) (*domain.Role, error) {
	var (
		role domain.Role
		ok   bool
	)
	_ = r.db.View(func(tx *memdb.Tx) error {
		role, ok = Roles.Get(tx, id)
		return nil
	})
	if !ok {
		return nil, ports.ErrNotFound
	}
	role.Permissions = slices.Clone(role.Permissions)
	return &role, nil
}

func (r *Repository) ListRoles(_ context.Context) ([]domain.Role, error) {
	var roles []domain.Role
	_ = r.db.View(func(tx *memdb.Tx) error {
		roles = Roles.Filter(tx, nil, func(a, b domain.Role) bool { return a.ID < b.ID })
		return nil
	})
	return roles, nil
}

// SessionStore is an in-memory session store sharing the user tables.
type SessionStore struct {
	db *memdb.DB
}

func NewSessionStore(db *memdb.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	return s.db.Update(func(tx *memdb.Tx) error {
		Sessions.Put(tx, session.Token, session)
		return nil
	})
}

func (s *SessionStore) ValidateAndExtend(_ context.Context, token string, now time.Time, ttl time.Duration) (*domain.Principal, error) {
	var principal *domain.Principal
	err := s.db.Update(func(tx *memdb.Tx) error {
		session, ok := Sessions.Get(tx, token)
		if !ok || session.Expired(now) {
			return ports.ErrSessionNotFound
		}
		user, ok := Users.Get(tx, session.UserID)
		if !ok {
			return ports.ErrSessionNotFound
		}
		role, ok := Roles.Get(tx, user.RoleID)
		if !ok {
			return ports.ErrSessionNotFound
		}
		session.ExpiresAt = now.Add(ttl)
		Sessions.Put(tx, token, session)
		role.Permissions = slices.Clone(role.Permissions)
		principal = &domain.Principal{User: user, Role: role, SessionID: token, ExpiresAt: session.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	return s.db.Update(func(tx *memdb.Tx) error {
		Sessions.Delete(tx, token)
		return nil
	})
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	err := s.db.Update(func(tx *memdb.Tx) error {
		for _, session := range Sessions.Filter(tx, func(s domain.Session) bool { return s.Expired(now) }, nil) {
			if Sessions.Delete(tx, session.Token) {
				purged++
			}
		}
		return nil
	})
	return purged, err
}
