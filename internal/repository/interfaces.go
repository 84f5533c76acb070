package repository

import (
	"context"
	"errors"
	"time"

	"github.com/petchlovefamily/clinic-system/internal/model"
)

// Sentinel storage errors. Services translate these into typed API failures.
var (
	ErrNotFound        = errors.New("record not found")
	ErrConflict        = errors.New("conflicting appointment exists")
	ErrDuplicate       = errors.New("record already exists")
	ErrInvalidInterval = errors.New("start time must be before end time")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ListClinicians(ctx context.Context) ([]*model.ClinicianSummary, error)
}

type PatientRepository interface {
	// Create inserts the patient and assigns its derived record number in
	// the same transaction.
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id int64) (*model.Patient, error)
	List(ctx context.Context) ([]*model.Patient, error)
	Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error)
	SoftDelete(ctx context.Context, id int64) error
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

type AppointmentRepository interface {
	// Create runs the overlap check and the insert in one serializable
	// transaction and assigns the derived record number. Returns ErrConflict
	// when the clinician already has an overlapping appointment.
	Create(ctx context.Context, apt *model.Appointment) error
	FindConflicting(ctx context.Context, clinicianID int64, start, end time.Time, excludeID *int64) ([]*model.Appointment, error)
	// Get and List join patient and clinician summaries. A non-nil
	// clinicianID restricts visibility to that clinician's rows.
	Get(ctx context.Context, id int64, clinicianID *int64) (*model.AppointmentDetail, error)
	List(ctx context.Context, clinicianID *int64) ([]*model.AppointmentDetail, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]*model.AppointmentDetail, error)
	// Update applies the patch under the same row filter semantics as Get
	// and re-runs the overlap check when the patch touches the schedule.
	Update(ctx context.Context, id int64, patch *model.AppointmentPatch, clinicianID *int64) (*model.Appointment, error)
	SoftDelete(ctx context.Context, id int64) error
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenRepository tracks revoked token ids until their natural expiry.
type TokenRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
