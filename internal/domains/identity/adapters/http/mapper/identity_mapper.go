package mapper

import (
	"time"

	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// User is the transport view of a staff account. The password hash never leaves the server.
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name"`
	RoleID         int64     `json:"role_id"`
	BusinessAreaID *int64    `json:"business_area_id"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Role is the transport view of a role.
type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// Session describes the caller's current session.
type Session struct {
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
	Role      Role      `json:"role"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Username       string `json:"username" binding:"required,min=3,max=64"`
	FullName       string `json:"full_name" binding:"max=255"`
	Password       string `json:"password" binding:"required,min=8"`
	RoleID         int64  `json:"role_id" binding:"required,gt=0"`
	BusinessAreaID *int64 `json:"business_area_id" binding:"omitempty,gt=0"`
}

func (r CreateUserRequest) ToInput() ports.CreateUserInput {
	return ports.CreateUserInput{
		Username:       r.Username,
		FullName:       r.FullName,
		Password:       r.Password,
		RoleID:         r.RoleID,
		BusinessAreaID: r.BusinessAreaID,
	}
}

// CreateRoleRequest is the body of POST /api/roles.
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,max=64"`
	Permissions []string `json:"permissions" binding:"required,min=1"`
}

func (r CreateRoleRequest) ToInput() ports.CreateRoleInput {
	return ports.CreateRoleInput{Name: r.Name, Permissions: r.Permissions}
}

func FromUser(u *domain.User) User {
	if u == nil {
		return User{}
	}
	return User{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		RoleID:         u.RoleID,
		BusinessAreaID: u.BusinessAreaID,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
	}
}

func FromUsers(users []domain.User) []User {
	out := make([]User, 0, len(users))
	for i := range users {
		out = append(out, FromUser(&users[i]))
	}
	return out
}

func FromRole(r *domain.Role) Role {
	if r == nil {
		return Role{}
	}
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, string(p))
	}
	return Role{ID: r.ID, Name: r.Name, Permissions: perms}
}

func FromRoles(roles []domain.Role) []Role {
	out := make([]Role, 0, len(roles))
	for i := range roles {
		out = append(out, FromRole(&roles[i]))
	}
	return out
}

// FromPrincipal describes the session without its token.
func FromPrincipal(p *domain.Principal) Session {
	if p == nil {
		return Session{}
	}
	return Session{ExpiresAt: p.ExpiresAt, User: FromUser(&p.User), Role: FromRole(&p.Role)}
}

// FromLogin describes a freshly issued session including its token.
func FromLogin(r *ports.LoginResult) Session {
	if r == nil {
		return Session{}
	}
	session := FromPrincipal(r.Principal)
	session.Token = r.Token
	session.ExpiresAt = r.ExpiresAt
	return session
}
