package clinicserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identitymapper "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/http/mapper"
	identityports "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
)

// UserAPI manages staff accounts and roles.
type UserAPI struct {
	service identityports.Service
}

func NewUserAPI(service identityports.Service) UserAPI {
	return UserAPI{service: service}
}

// Get /api/users
func (api *UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identitymapper.FromUsers(users))
}

// Post /api/users
func (api *UserAPI) CreateUser(c *gin.Context) {
	var payload identitymapper.CreateUserRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := api.service.CreateUser(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, identitymapper.FromUser(user))
}

// Get /api/roles
func (api *UserAPI) ListRoles(c *gin.Context) {
	roles, err := api.service.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, identitymapper.FromRoles(roles))
}

// Post /api/roles
func (api *UserAPI) CreateRole(c *gin.Context) {
	var payload identitymapper.CreateRoleRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	role, err := api.service.CreateRole(c.Request.Context(), payload.ToInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, identitymapper.FromRole(role))
}
