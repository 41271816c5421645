package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
	pgplatform "github.com/ignasiusberneo/clinic-admin/internal/platform/postgres"
)

var (
	_ ports.Repository   = (*Repository)(nil)
	_ ports.SessionStore = (*SessionStore)(nil)
)

// Models lists the identity tables for migrations.
func Models() []any {
	return []any{&UserRecord{}, &RoleRecord{}, &SessionRecord{}}
}

// UserRecord maps users.
type UserRecord struct {
	ID             int64     `gorm:"primaryKey;column:id"`
	Username       string    `gorm:"column:username;size:64;uniqueIndex"`
	FullName       string    `gorm:"column:full_name"`
	PasswordHash   string    `gorm:"column:password_hash"`
	RoleID         int64     `gorm:"column:role_id;index"`
	BusinessAreaID *int64    `gorm:"column:business_area_id"`
	IsActive       bool      `gorm:"column:is_active"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (UserRecord) TableName() string { return "users" }

// RoleRecord maps roles. Permissions live in a text[] column.
type RoleRecord struct {
	ID          int64          `gorm:"primaryKey;column:id"`
	Name        string         `gorm:"column:name;size:64;uniqueIndex"`
	Permissions pq.StringArray `gorm:"column:permissions;type:text[]"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (RoleRecord) TableName() string { return "roles" }

// SessionRecord maps user_sessions.
type SessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:64"`
	UserID    int64     `gorm:"column:user_id;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SessionRecord) TableName() string { return "user_sessions" }

// Repository persists users and roles in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) SaveUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := userToRecord(user)
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		if pgplatform.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicateUsername
		}
		return nil, err
	}
	saved := record.toDomain()
	return &saved, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return r.firstUser(ctx, "id = ?", id)
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.firstUser(ctx, "username = ?", username)
}

func (r *Repository) firstUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record UserRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	user := record.toDomain()
	return &user, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []UserRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users, nil
}

func (r *Repository) SaveRole(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.New("role is nil")
	}
	record := roleToRecord(role)
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		if pgplatform.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicateRole
		}
		return nil, err
	}
	saved := record.toDomain()
	return &saved, nil
}

func (r *Repository) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record RoleRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	role := record.toDomain()
	return &role, nil
}

func (r *Repository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []RoleRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(records))
	for i := range records {
		roles = append(roles, records[i].toDomain())
	}
	return roles, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres identity repository not configured")
	}
	return nil
}

// SessionStore persists sessions in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := SessionRecord{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(&record).Error
}

// ValidateAndExtend runs in a SERIALIZABLE transaction so two requests on the
// same session cannot both slide it from a stale read.
func (s *SessionStore) ValidateAndExtend(ctx context.Context, token string, now time.Time, ttl time.Duration) (*domain.Principal, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var principal *domain.Principal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session SessionRecord
		if err := tx.First(&session, "token = ?", token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrSessionNotFound
			}
			return err
		}
		if !session.ExpiresAt.After(now) {
			return ports.ErrSessionNotFound
		}
		var user UserRecord
		if err := tx.First(&user, "id = ?", session.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrSessionNotFound
			}
			return err
		}
		var role RoleRecord
		if err := tx.First(&role, "id = ?", user.RoleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrSessionNotFound
			}
			return err
		}
		expires := now.Add(ttl)
		if err := tx.Model(&SessionRecord{}).
			Where("token = ?", token).
			Updates(map[string]any{"expires_at": expires, "updated_at": now}).Error; err != nil {
			return err
		}
		principal = &domain.Principal{
			User:      user.toDomain(),
			Role:      role.toDomain(),
			SessionID: token,
			ExpiresAt: expires,
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if pgplatform.IsTxConflict(err) {
		return nil, fmt.Errorf("%w: %w", ports.ErrSessionConflict, err)
	}
	if err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&SessionRecord{}, "token = ?", token).Error
}

func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&SessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

func userToRecord(u *domain.User) UserRecord {
	return UserRecord{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		PasswordHash:   u.PasswordHash,
		RoleID:         u.RoleID,
		BusinessAreaID: u.BusinessAreaID,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
	}
}

func (r UserRecord) toDomain() domain.User {
	return domain.User{
		ID:             r.ID,
		Username:       r.Username,
		FullName:       r.FullName,
		PasswordHash:   r.PasswordHash,
		RoleID:         r.RoleID,
		BusinessAreaID: r.BusinessAreaID,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
	}
}

func roleToRecord(r *domain.Role) RoleRecord {
	perms := make(pq.StringArray, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, string(p))
	}
	return RoleRecord{ID: r.ID, Name: r.Name, Permissions: perms}
}

func (r RoleRecord) toDomain() domain.Role {
	role := domain.Role{ID: r.ID, Name: r.Name}
	for _, p := range r.Permissions {
		role.Permissions = append(role.Permissions, domain.Permission(p))
	}
	return role
}
