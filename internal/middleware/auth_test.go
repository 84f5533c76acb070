package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/petchlovefamily/clinic-system/internal/middleware"
	"github.com/petchlovefamily/clinic-system/internal/model"
	apperrors "github.com/petchlovefamily/clinic-system/pkg/errors"
)

type stubAuthenticator struct {
	identity *model.Identity
	err      error
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func newTestRouter(auth middleware.Authenticator, roles ...model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	group := r.Group("/")
	group.Use(middleware.NewAuthMiddleware(auth).Authenticate())
	if len(roles) > 0 {
		group.Use(middleware.RequireRoles(roles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		identity, _ := middleware.IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID})
	})
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingHeader(t *testing.T) {
	r := newTestRouter(&stubAuthenticator{identity: &model.Identity{UserID: 1, Role: model.RoleAdmin}})

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_MISSING")
}

func TestAuthenticateBadFormat(t *testing.T) {
	r := newTestRouter(&stubAuthenticator{identity: &model.Identity{UserID: 1, Role: model.RoleAdmin}})

	w := doRequest(r, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_MISSING")
}

func TestAuthenticateInvalidToken(t *testing.T) {
	stub := &stubAuthenticator{err: apperrors.NewUnauthorized(apperrors.ErrAuthInvalid, "invalid token", nil)}
	r := newTestRouter(stub)

	w := doRequest(r, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_INVALID")
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	stub := &stubAuthenticator{identity: &model.Identity{UserID: 7, Role: model.RoleReception}}
	r := newTestRouter(stub)

	w := doRequest(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestRequireRoles(t *testing.T) {
	clinician := &stubAuthenticator{identity: &model.Identity{UserID: 7, Role: model.RoleClinician}}

	denied := newTestRouter(clinician, model.RoleReception, model.RoleAdmin)
	w := doRequest(denied, "Bearer good")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	allowed := newTestRouter(clinician, model.RoleClinician)
	w = doRequest(allowed, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
}
