package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/repository"
	authservice "github.com/petchlovefamily/clinic-system/internal/service/auth"
	"github.com/petchlovefamily/clinic-system/pkg/auth"
	apperrors "github.com/petchlovefamily/clinic-system/pkg/errors"
	"github.com/petchlovefamily/clinic-system/pkg/security"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.users[user.Username]; exists {
		return repository.ErrDuplicate
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.users[user.Username] = &stored
	return nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) ListClinicians(ctx context.Context) ([]*model.ClinicianSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.ClinicianSummary
	for _, u := range f.users {
		if u.Role == model.RoleClinician {
			out = append(out, &model.ClinicianSummary{ID: u.ID, Username: u.Username})
		}
	}
	return out, nil
}

type fakeTokenRepo struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{revoked: map[string]bool{}}
}

func (f *fakeTokenRepo) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[tokenID] = true
	return nil
}

func (f *fakeTokenRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[tokenID], nil
}

func newService() (*authservice.Service, *fakeUserRepo) {
	users := newFakeUserRepo()
	tokens := auth.NewJWTService("test-secret", time.Hour)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	return authservice.NewService(users, newFakeTokenRepo(), tokens, hasher), users
}

func registerReq(username string, role model.Role) *model.RegisterRequest {
	return &model.RegisterRequest{Username: username, Password: "s3cret-pass", Role: role}
}

func TestRegister(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerReq("reception1", model.RoleReception))
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Equal(t, "reception1", resp.Username)
	assert.Equal(t, model.RoleReception, resp.Role)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("reception1", model.RoleReception))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerReq("reception1", model.RoleClinician))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.AsAppError(err).Code)
}

func TestRegisterInvalidRole(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Register(context.Background(), registerReq("someone", model.Role("SUPERUSER")))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation, apperrors.AsAppError(err).Code)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, registerReq("dr.smith", model.RoleClinician))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &model.LoginRequest{Username: "dr.smith", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	identity, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, identity.UserID)
	assert.Equal(t, model.RoleClinician, identity.Role)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("dr.smith", model.RoleClinician))
	require.NoError(t, err)

	// Wrong password and unknown user fail identically.
	_, err = svc.Login(ctx, &model.LoginRequest{Username: "dr.smith", Password: "wrong-pass"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthInvalid, apperrors.AsAppError(err).Code)

	_, err = svc.Login(ctx, &model.LoginRequest{Username: "nobody", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthInvalid, apperrors.AsAppError(err).Code)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Authenticate(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthInvalid, apperrors.AsAppError(err).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("dr.smith", model.RoleClinician))
	require.NoError(t, err)
	resp, err := svc.Login(ctx, &model.LoginRequest{Username: "dr.smith", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))

	_, err = svc.Authenticate(ctx, resp.Token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthInvalid, apperrors.AsAppError(err).Code)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, _ := newService()

	claims := auth.Claims{
		UserID: 1,
		Role:   model.RoleClinician,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "expired-token",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), signed)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrAuthExpired, apperrors.AsAppError(err).Code)
}
