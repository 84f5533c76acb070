package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/repository"
)

const appointmentDetailColumns = `
	a.id, a.record_number, a.patient_id, a.clinician_id,
	a.start_time, a.end_time, a.note, a.clinician_note, a.status,
	a.created_by_id, a.created_at, a.updated_at, a.deleted_at,
	p.id AS "patient.id", p.first_name AS "patient.first_name",
	p.last_name AS "patient.last_name", p.record_number AS "patient.record_number",
	u.id AS "clinician.id", u.username AS "clinician.username"
`

const pqSerializationFailure = "40001"

func (r *appointmentRepository) beginSerializable(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// isSerializationFailure reports whether Postgres aborted the transaction
// because it raced another serializable writer. The loser of two racing
// bookings for the same clinician lands here; its write would have
// conflicted had it run second, so it surfaces as ErrConflict.
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqSerializationFailure
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	tx, err := r.beginSerializable(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	conflicting, err := findConflicting(ctx, tx, apt.ClinicianID, apt.StartTime, apt.EndTime, nil)
	if err != nil {
		return err
	}
	if len(conflicting) > 0 {
		return repository.ErrConflict
	}

	now := time.Now()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	insert := `
		INSERT INTO appointments (
			record_number, patient_id, clinician_id, start_time, end_time,
			note, clinician_note, status, created_by_id, created_at, updated_at
		) VALUES ('', $1, $2, $3, $4, $5, '', $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.GetContext(ctx, &apt.ID, insert,
		apt.PatientID,
		apt.ClinicianID,
		apt.StartTime,
		apt.EndTime,
		apt.Note,
		apt.Status,
		apt.CreatedByID,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		if isSerializationFailure(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	// Record number derives from the generated id and is assigned with a
	// second statement inside the same transaction.
	apt.RecordNumber = model.RecordNumber(model.AppointmentRecordPrefix, apt.ID)
	if _, err := tx.ExecContext(ctx,
		`UPDATE appointments SET record_number = $1 WHERE id = $2`,
		apt.RecordNumber, apt.ID,
	); err != nil {
		return fmt.Errorf("failed to assign record number: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *appointmentRepository) FindConflicting(ctx context.Context, clinicianID int64, start, end time.Time, excludeID *int64) ([]*model.Appointment, error) {
	return findConflicting(ctx, r.db, clinicianID, start, end, excludeID)
}

type queryer interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// findConflicting returns non-deleted appointments for the clinician whose
// half-open [start_time, end_time) interval intersects [start, end).
// Touching boundaries do not conflict.
func findConflicting(ctx context.Context, q queryer, clinicianID int64, start, end time.Time, excludeID *int64) ([]*model.Appointment, error) {
	query := `
		SELECT id, record_number, patient_id, clinician_id, start_time, end_time,
			   note, clinician_note, status, created_by_id,
			   created_at, updated_at, deleted_at
		FROM appointments
		WHERE clinician_id = $1
		  AND deleted_at IS NULL
		  AND start_time < $3
		  AND end_time > $2
	`
	args := []interface{}{clinicianID, start, end}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	conflicts := []*model.Appointment{}
	if err := q.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find conflicting appointments: %w", err)
	}
	return conflicts, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64, clinicianID *int64) (*model.AppointmentDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN users u ON u.id = a.clinician_id
		WHERE a.id = $1 AND a.deleted_at IS NULL
	`, appointmentDetailColumns)
	args := []interface{}{id}

	if clinicianID != nil {
		query += " AND a.clinician_id = $2"
		args = append(args, *clinicianID)
	}

	var detail model.AppointmentDetail
	err := r.db.GetContext(ctx, &detail, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &detail, nil
}

func (r *appointmentRepository) List(ctx context.Context, clinicianID *int64) ([]*model.AppointmentDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN users u ON u.id = a.clinician_id
		WHERE a.deleted_at IS NULL
	`, appointmentDetailColumns)
	args := []interface{}{}

	if clinicianID != nil {
		query += " AND a.clinician_id = $1"
		args = append(args, *clinicianID)
	}

	query += " ORDER BY a.start_time ASC"

	appointments := []*model.AppointmentDetail{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*model.AppointmentDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN users u ON u.id = a.clinician_id
		WHERE a.deleted_at IS NULL
		  AND a.start_time >= $1
		  AND a.start_time < $2
		ORDER BY a.start_time ASC
	`, appointmentDetailColumns)

	appointments := []*model.AppointmentDetail{}
	if err := r.db.SelectContext(ctx, &appointments, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id int64, patch *model.AppointmentPatch, clinicianID *int64) (*model.Appointment, error) {
	tx, err := r.beginSerializable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Row filter doubles as the clinician ownership check; a clinician
	// updating someone else's appointment sees not-found, not forbidden.
	current, err := lockAppointment(ctx, tx, id, clinicianID)
	if err != nil {
		return nil, err
	}

	clinician := current.ClinicianID
	start := current.StartTime
	end := current.EndTime
	if patch.ClinicianID != nil {
		clinician = *patch.ClinicianID
	}
	if patch.StartTime != nil {
		start = *patch.StartTime
	}
	if patch.EndTime != nil {
		end = *patch.EndTime
	}

	if patch.TouchesSchedule() {
		if !start.Before(end) {
			return nil, repository.ErrInvalidInterval
		}
		conflicting, err := findConflicting(ctx, tx, clinician, start, end, &id)
		if err != nil {
			return nil, err
		}
		if len(conflicting) > 0 {
			return nil, repository.ErrConflict
		}
	}

	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}
	argCount := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if patch.PatientID != nil {
		addSet("patient_id", *patch.PatientID)
	}
	if patch.ClinicianID != nil {
		addSet("clinician_id", *patch.ClinicianID)
	}
	if patch.StartTime != nil {
		addSet("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		addSet("end_time", *patch.EndTime)
	}
	if patch.Note != nil {
		addSet("note", *patch.Note)
	}
	if patch.ClinicianNote != nil {
		addSet("clinician_note", *patch.ClinicianNote)
	}
	if patch.Status != nil {
		addSet("status", *patch.Status)
	}

	query := fmt.Sprintf(`
		UPDATE appointments
		SET %s
		WHERE id = $%d
		RETURNING id, record_number, patient_id, clinician_id, start_time, end_time,
				  note, clinician_note, status, created_by_id,
				  created_at, updated_at, deleted_at
	`, strings.Join(sets, ", "), argCount)
	args = append(args, id)

	var apt model.Appointment
	if err := tx.GetContext(ctx, &apt, query, args...); err != nil {
		if isSerializationFailure(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &apt, nil
}

func lockAppointment(ctx context.Context, tx *sqlx.Tx, id int64, clinicianID *int64) (*model.Appointment, error) {
	query := `
		SELECT id, record_number, patient_id, clinician_id, start_time, end_time,
			   note, clinician_note, status, created_by_id,
			   created_at, updated_at, deleted_at
		FROM appointments
		WHERE id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{id}

	if clinicianID != nil {
		query += " AND clinician_id = $2"
		args = append(args, *clinicianID)
	}

	query += " FOR UPDATE"

	var apt model.Appointment
	err := tx.GetContext(ctx, &apt, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE appointments
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM appointments WHERE deleted_at IS NOT NULL AND deleted_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge appointments: %w", err)
	}
	return result.RowsAffected()
}
