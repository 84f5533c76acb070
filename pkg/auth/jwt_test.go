package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petchlovefamily/clinic-system/internal/model"
)

func TestGenerateAndVerify(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	token, err := svc.Generate(7, model.RoleClinician)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, model.RoleClinician, claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", time.Hour).Generate(7, model.RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	claims := Claims{
		UserID: 7,
		Role:   model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "old",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	claims := Claims{
		UserID: 7,
		Role:   model.Role("SUPERUSER"),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := NewJWTService("secret", time.Hour).Verify("definitely.not.ajwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
