package clinicserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	identitymapper "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/adapters/http/mapper"
	identityports "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/ports"
)

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Secure bool
	Domain string
}

// AuthAPI wires HTTP transport with login and session handling.
type AuthAPI struct {
	service identityports.Service
	cookie  CookieOptions
}

// NewAuthAPI creates an AuthAPI backed by the provided identity service.
func NewAuthAPI(service identityports.Service, cookie CookieOptions) AuthAPI {
	return AuthAPI{service: service, cookie: cookie}
}

// Post /api/auth/login
// Exchange credentials for a session cookie
func (api *AuthAPI) Login(c *gin.Context) {
	var payload identitymapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	api.setCookie(c, result.Token, maxAge)
	c.JSON(http.StatusOK, identitymapper.FromLogin(result))
}

// Post /api/auth/logout
func (api *AuthAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		respondError(c, err)
		return
	}
	api.setCookie(c, "", -1)
	respondMessage(c, http.StatusOK, "Logout berhasil")
}

// Get /api/auth/me
// Describe the current session
func (api *AuthAPI) Me(c *gin.Context) {
	principal := PrincipalFrom(c)
	if principal == nil {
		respondUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, identitymapper.FromPrincipal(principal))
}

func (api *AuthAPI) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", api.cookie.Domain, api.cookie.Secure, true)
}
