package user

import (
	"context"

	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/repository"
	apperrors "github.com/petchlovefamily/clinic-system/pkg/errors"
)

type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// ListClinicians returns non-deleted users with the CLINICIAN role, reduced
// to the shape the scheduling frontend consumes.
func (s *Service) ListClinicians(ctx context.Context) ([]*model.ClinicianSummary, error) {
	clinicians, err := s.repo.ListClinicians(ctx)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return clinicians, nil
}
