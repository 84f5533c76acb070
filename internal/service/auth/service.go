package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/repository"
	"github.com/petchlovefamily/clinic-system/pkg/auth"
	apperrors "github.com/petchlovefamily/clinic-system/pkg/errors"
	"github.com/petchlovefamily/clinic-system/pkg/security"
)

type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	tokens    auth.TokenService
	hasher    security.PasswordHasher
}

func NewService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository,
	tokens auth.TokenService, hasher security.PasswordHasher) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokens:    tokens,
		hasher:    hasher,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	if !req.Role.Valid() {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid role %q", req.Role), nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.NewValidation("invalid password", err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username already exists", err)
		}
		return nil, apperrors.NewInternal(err)
	}

	return &model.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized(apperrors.ErrAuthInvalid, "invalid username or password", nil)
		}
		return nil, apperrors.NewInternal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.NewUnauthorized(apperrors.ErrAuthInvalid, "invalid username or password", nil)
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return &model.TokenResponse{Token: token}, nil
}

// Authenticate verifies a bearer token and returns the caller identity.
// Revoked tokens are rejected the same way as forged ones.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*model.Identity, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized(apperrors.ErrAuthExpired, "token expired", err)
		}
		return nil, apperrors.NewUnauthorized(apperrors.ErrAuthInvalid, "invalid token", err)
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if revoked {
		return nil, apperrors.NewUnauthorized(apperrors.ErrAuthInvalid, "invalid token", nil)
	}

	return &model.Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			// Expired tokens are already unusable.
			return nil
		}
		return apperrors.NewUnauthorized(apperrors.ErrAuthInvalid, "invalid token", err)
	}

	if err := s.tokenRepo.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return apperrors.NewInternal(err)
	}
	return nil
}
