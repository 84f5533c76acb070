package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/petchlovefamily/clinic-system/internal/handler"
	"github.com/petchlovefamily/clinic-system/internal/model"
	apperrors "github.com/petchlovefamily/clinic-system/pkg/errors"
)

const (
	ContextIdentity = "identity"
	ContextToken    = "bearer_token"
)

// Authenticator verifies a bearer token and yields the caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*model.Identity, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate verifies the bearer token and attaches the caller identity
// to the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.RespondError(c, apperrors.NewUnauthorized(apperrors.ErrAuthMissing, "missing authorization header", nil))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			handler.RespondError(c, apperrors.NewUnauthorized(apperrors.ErrAuthMissing, "invalid authorization format", nil))
			return
		}

		identity, err := m.auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		c.Set(ContextIdentity, *identity)
		c.Set(ContextToken, parts[1])
		c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated role
// is in the allowed set. Must run after Authenticate.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			handler.RespondError(c, apperrors.NewUnauthorized(apperrors.ErrAuthMissing, "missing authentication", nil))
			return
		}

		if _, ok := allowed[identity.Role]; !ok {
			handler.RespondError(c, apperrors.NewForbidden("you do not have permission"))
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the authenticated caller attached by Authenticate.
func IdentityFrom(c *gin.Context) (model.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return model.Identity{}, false
	}
	identity, ok := v.(model.Identity)
	return identity, ok
}

// TokenFrom returns the raw bearer token attached by Authenticate.
func TokenFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextToken)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
