package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/pkg/logger"
	"github.com/petchlovefamily/clinic-system/pkg/metrics"
)

var testMetrics = metrics.New("retention_test")

// stubAppointmentRepo tracks soft-deleted appointments so the patient stub
// can mirror the purge SQL's referential guard.
type stubAppointmentRepo struct {
	rows map[int64]*model.Appointment
}

func (s *stubAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	return nil
}

func (s *stubAppointmentRepo) FindConflicting(ctx context.Context, clinicianID int64, start, end time.Time, excludeID *int64) ([]*model.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) Get(ctx context.Context, id int64, clinicianID *int64) (*model.AppointmentDetail, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) List(ctx context.Context, clinicianID *int64) ([]*model.AppointmentDetail, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) ListBetween(ctx context.Context, start, end time.Time) ([]*model.AppointmentDetail, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) Update(ctx context.Context, id int64, patch *model.AppointmentPatch, clinicianID *int64) (*model.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentRepo) SoftDelete(ctx context.Context, id int64) error {
	return nil
}

func (s *stubAppointmentRepo) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, row := range s.rows {
		if row.DeletedAt != nil && row.DeletedAt.Before(cutoff) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *stubAppointmentRepo) references(patientID int64) bool {
	for _, row := range s.rows {
		if row.PatientID == patientID {
			return true
		}
	}
	return false
}

type stubPatientRepo struct {
	rows         map[int64]*model.Patient
	appointments *stubAppointmentRepo
}

func (s *stubPatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }

func (s *stubPatientRepo) Get(ctx context.Context, id int64) (*model.Patient, error) {
	return nil, nil
}

func (s *stubPatientRepo) List(ctx context.Context) ([]*model.Patient, error) { return nil, nil }

func (s *stubPatientRepo) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	return nil, nil
}

func (s *stubPatientRepo) SoftDelete(ctx context.Context, id int64) error { return nil }

// Purge mirrors the postgres query: rows still referenced by any
// appointment are left for a later pass.
func (s *stubPatientRepo) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, row := range s.rows {
		if row.DeletedAt == nil || !row.DeletedAt.Before(cutoff) {
			continue
		}
		if s.appointments.references(id) {
			continue
		}
		delete(s.rows, id)
		n++
	}
	return n, nil
}

func deletedAt(daysAgo int) *time.Time {
	t := time.Now().AddDate(0, 0, -daysAgo)
	return &t
}

func TestPurgeSkipsReferencedPatients(t *testing.T) {
	appointments := &stubAppointmentRepo{rows: map[int64]*model.Appointment{}}
	patients := &stubPatientRepo{rows: map[int64]*model.Patient{}, appointments: appointments}

	// Patient 1 aged out long ago but its appointment was deleted recently;
	// patient 2 aged out with no appointments at all.
	patients.rows[1] = &model.Patient{Base: model.Base{ID: 1, DeletedAt: deletedAt(60)}}
	patients.rows[2] = &model.Patient{Base: model.Base{ID: 2, DeletedAt: deletedAt(60)}}
	appointments.rows[10] = &model.Appointment{
		Base:      model.Base{ID: 10, DeletedAt: deletedAt(10)},
		PatientID: 1,
	}

	w := NewRetentionWorker(patients, appointments, 30, time.Hour, logger.New(nil), testMetrics)
	ctx := context.Background()

	require.NoError(t, w.purge(ctx))
	assert.Contains(t, patients.rows, int64(1), "referenced patient must survive the pass")
	assert.NotContains(t, patients.rows, int64(2))
	assert.Contains(t, appointments.rows, int64(10))

	// Once the appointment ages past the window, the next pass clears both.
	appointments.rows[10].DeletedAt = deletedAt(40)
	require.NoError(t, w.purge(ctx))
	assert.Empty(t, appointments.rows)
	assert.Empty(t, patients.rows)
}
