package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/repository"
)

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	insert := `
		INSERT INTO patients (
			record_number, first_name, last_name, gender, date_of_birth,
			allergies, medical_history, current_medications, created_at, updated_at
		) VALUES ('', $1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err = tx.GetContext(ctx, &patient.ID, insert,
		patient.FirstName,
		patient.LastName,
		patient.Gender,
		patient.DateOfBirth,
		patient.Allergies,
		patient.MedicalHistory,
		patient.CurrentMedications,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}

	// The record number derives from the generated id, so it is assigned
	// with a second statement inside the same transaction.
	patient.RecordNumber = model.RecordNumber(model.PatientRecordPrefix, patient.ID)
	if _, err := tx.ExecContext(ctx,
		`UPDATE patients SET record_number = $1 WHERE id = $2`,
		patient.RecordNumber, patient.ID,
	); err != nil {
		return fmt.Errorf("failed to assign record number: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `
		SELECT id, record_number, first_name, last_name, gender, date_of_birth,
			   allergies, medical_history, current_medications,
			   created_at, updated_at, deleted_at
		FROM patients
		WHERE id = $1 AND deleted_at IS NULL
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `
		SELECT id, record_number, first_name, last_name, gender, date_of_birth,
			   allergies, medical_history, current_medications,
			   created_at, updated_at, deleted_at
		FROM patients
		WHERE deleted_at IS NULL
		ORDER BY id DESC
	`
	patients := []*model.Patient{}
	err := r.db.SelectContext(ctx, &patients, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}
	argCount := 2

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if req.FirstName != nil {
		addSet("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		addSet("last_name", *req.LastName)
	}
	if req.Gender != nil {
		addSet("gender", *req.Gender)
	}
	if req.DateOfBirth != nil {
		addSet("date_of_birth", *req.DateOfBirth)
	}
	if req.Allergies != nil {
		addSet("allergies", *req.Allergies)
	}
	if req.MedicalHistory != nil {
		addSet("medical_history", *req.MedicalHistory)
	}
	if req.CurrentMedications != nil {
		addSet("current_medications", *req.CurrentMedications)
	}

	query := fmt.Sprintf(`
		UPDATE patients
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING id, record_number, first_name, last_name, gender, date_of_birth,
				  allergies, medical_history, current_medications,
				  created_at, updated_at, deleted_at
	`, strings.Join(sets, ", "), argCount)
	args = append(args, id)

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE patients
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
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

// Purge skips patients still referenced by appointments; those rows wait for
// a later pass once their appointments have been purged too.
func (r *patientRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM patients
		 WHERE deleted_at IS NOT NULL AND deleted_at < $1
		   AND NOT EXISTS (SELECT 1 FROM appointments WHERE patient_id = patients.id)`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge patients: %w", err)
	}
	return result.RowsAffected()
}
