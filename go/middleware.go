package clinicserver

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	identityapp "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/application"
	identitydomain "github.com/ignasiusberneo/clinic-admin/internal/domains/identity/domain"
)

// SessionCookieName carries the opaque session token.
const SessionCookieName = "sessionToken"

const (
	principalKey    = "clinic.principal"
	sessionTokenKey = "clinic.sessionToken"
)

// Authenticator resolves a session token to a principal, extending the session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identitydomain.Principal, error)
}

// SessionMiddleware requires a valid session from the cookie or a bearer header.
func SessionMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" || auth == nil {
			respondUnauthorized(c)
			return
		}
		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, identityapp.ErrAuthentication) {
				respondUnauthorized(c)
				return
			}
			respondError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// RequirePermission answers 403 unless the principal holds perm.
func RequirePermission(perm identitydomain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			respondUnauthorized(c)
			return
		}
		if !principal.Can(perm) {
			respondForbidden(c)
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal resolved by SessionMiddleware.
func PrincipalFrom(c *gin.Context) *identitydomain.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := value.(*identitydomain.Principal)
	return principal
}

func sessionToken(c *gin.Context) string {
	if value, ok := c.Get(sessionTokenKey); ok {
		if token, _ := value.(string); token != "" {
			return token
		}
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
