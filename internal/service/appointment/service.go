package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/repository"
	apperrors "github.com/petchlovefamily/clinic-system/pkg/errors"
	"github.com/petchlovefamily/clinic-system/pkg/metrics"
)

type Service struct {
	repo    repository.AppointmentRepository
	metrics *metrics.Metrics
}

func NewService(repo repository.AppointmentRepository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, metrics: m}
}

// Create schedules a new appointment. The overlap check and the insert run
// atomically in the repository; two racing creates for the same clinician
// cannot both pass the check.
func (s *Service) Create(ctx context.Context, actor model.Identity, req *model.CreateAppointmentRequest) (*model.AppointmentDetail, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, apperrors.NewValidation("start time must be before end time", nil)
	}

	apt := &model.Appointment{
		PatientID:   req.PatientID,
		ClinicianID: req.ClinicianID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Note:        req.Note,
		Status:      model.AppointmentStatusPending,
		CreatedByID: actor.UserID,
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.countConflict()
			return nil, apperrors.NewConflict("appointment time conflicts with an existing appointment", err)
		}
		return nil, apperrors.NewInternal(err)
	}

	detail, err := s.repo.Get(ctx, apt.ID, nil)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return detail, nil
}

// List returns non-deleted appointments in start-time order. Clinicians see
// only their own rows; reception and admin see everything.
func (s *Service) List(ctx context.Context, actor model.Identity) ([]*model.AppointmentDetail, error) {
	appointments, err := s.repo.List(ctx, visibilityFilter(actor))
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return appointments, nil
}

// Get applies the same visibility rule as List. A clinician asking for
// another clinician's appointment gets not-found, never forbidden, so row
// existence does not leak.
func (s *Service) Get(ctx context.Context, actor model.Identity, id int64) (*model.AppointmentDetail, error) {
	detail, err := s.repo.Get(ctx, id, visibilityFilter(actor))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	return detail, nil
}

// Update applies role-scoped field masking. Clinicians may change status and
// the clinical note on their own appointments only; reception and admin may
// reschedule and reassign, which re-runs the overlap check excluding the row
// being updated. Fields outside the caller's mask are silently ignored.
func (s *Service) Update(ctx context.Context, actor model.Identity, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	patch := &model.AppointmentPatch{}
	var rowFilter *int64

	switch actor.Role {
	case model.RoleClinician:
		if req.Status != nil {
			if !req.Status.Valid() {
				return nil, apperrors.NewValidation(fmt.Sprintf("invalid status %q", *req.Status), nil)
			}
			patch.Status = req.Status
		}
		patch.ClinicianNote = req.ClinicianNote
		rowFilter = &actor.UserID
	case model.RoleReception, model.RoleAdmin:
		patch.PatientID = req.PatientID
		patch.ClinicianID = req.ClinicianID
		patch.StartTime = req.StartTime
		patch.EndTime = req.EndTime
		patch.Note = req.Note
	default:
		return nil, apperrors.NewForbidden("role is not permitted to update appointments")
	}

	apt, err := s.repo.Update(ctx, id, patch, rowFilter)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("appointment", err)
		case errors.Is(err, repository.ErrConflict):
			s.countConflict()
			return nil, apperrors.NewConflict("appointment time conflicts with an existing appointment", err)
		case errors.Is(err, repository.ErrInvalidInterval):
			return nil, apperrors.NewValidation("start time must be before end time", err)
		}
		return nil, apperrors.NewInternal(err)
	}
	return apt, nil
}

// Delete soft-deletes an appointment. Deleting an absent or already deleted
// row reports not-found.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("appointment", err)
		}
		return apperrors.NewInternal(err)
	}
	return nil
}

func (s *Service) countConflict() {
	if s.metrics != nil {
		s.metrics.AppointmentConflicts.Inc()
	}
}

func visibilityFilter(actor model.Identity) *int64 {
	if actor.Role == model.RoleClinician {
		id := actor.UserID
		return &id
	}
	return nil
}
