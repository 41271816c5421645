package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Permission names a guarded capability.
type Permission string

const (
	PermAll             Permission = "*"
	PermOrdersRead      Permission = "orders.read"
	PermOrdersCreate    Permission = "orders.create"
	PermOrdersUpdate    Permission = "orders.update"
	PermOrdersCancel    Permission = "orders.cancel"
	PermOrdersPay       Permission = "orders.pay"
	PermSchedulesRead   Permission = "schedules.read"
	PermSchedulesWrite  Permission = "schedules.write"
	PermCatalogRead     Permission = "catalog.read"
	PermCatalogWrite    Permission = "catalog.write"
	PermStockWrite      Permission = "stock.write"
	PermMasterdataRead  Permission = "masterdata.read"
	PermMasterdataWrite Permission = "masterdata.write"
	PermUsersManage     Permission = "users.manage"
)

// KnownPermissions lists every permission a role may carry.
var KnownPermissions = []Permission{
	PermAll,
	PermOrdersRead, PermOrdersCreate, PermOrdersUpdate, PermOrdersCancel, PermOrdersPay,
	PermSchedulesRead, PermSchedulesWrite,
	PermCatalogRead, PermCatalogWrite, PermStockWrite,
	PermMasterdataRead, PermMasterdataWrite,
	PermUsersManage,
}

const minPasswordLength = 8

var (
	ErrEmptyUsername     = errors.New("username is required")
	ErrEmptyName         = errors.New("name is required")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrUnknownPermission = errors.New("unknown permission")
	ErrInvalidRole       = errors.New("role is required")
)

// Role groups permissions.
type Role struct {
	ID          int64
	Name        string
	Permissions []Permission
}

// Validate trims the name and rejects unknown or duplicate permissions.
func (r *Role) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrEmptyName
	}
	seen := make(map[Permission]bool, len(r.Permissions))
	out := r.Permissions[:0]
	for _, p := range r.Permissions {
		p = Permission(strings.TrimSpace(string(p)))
		if !slices.Contains(KnownPermissions, p) {
			return fmt.Errorf("%w: %q", ErrUnknownPermission, p)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	r.Permissions = out
	return nil
}

// Grants reports whether the role carries p, directly or through "*".
func (r Role) Grants(p Permission) bool {
	return slices.Contains(r.Permissions, PermAll) || slices.Contains(r.Permissions, p)
}

// User is a staff account.
type User struct {
	ID             int64
	Username       string
	FullName       string
	PasswordHash   string
	RoleID         int64
	BusinessAreaID *int64
	IsActive       bool
	CreatedAt      time.Time
}

// Validate normalizes the username and checks required fields.
func (u *User) Validate() error {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.FullName = strings.TrimSpace(u.FullName)
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.RoleID <= 0 {
		return ErrInvalidRole
	}
	return nil
}

// SetPassword stores a bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	if len(plain) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares plain against the stored hash.
func (u User) CheckPassword(plain string) bool {
	if u.PasswordHash == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// Session is an opaque login token with a sliding expiry.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Principal is the authenticated caller.
type Principal struct {
	User      User
	Role      Role
	SessionID string
	ExpiresAt time.Time
}

// Can reports whether the principal holds p.
func (p *Principal) Can(perm Permission) bool {
	return p != nil && p.Role.Grants(perm)
}
