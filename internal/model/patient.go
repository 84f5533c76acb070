package model

import (
	"fmt"
	"time"
)

// PatientRecordPrefix prefixes derived patient record numbers.
const PatientRecordPrefix = "PAT"

// Patient represents a patient record
type Patient struct {
	Base
	RecordNumber       string    `json:"record_number" db:"record_number"`
	FirstName          string    `json:"first_name" db:"first_name"`
	LastName           string    `json:"last_name" db:"last_name"`
	Gender             string    `json:"gender" db:"gender"`
	DateOfBirth        time.Time `json:"date_of_birth" db:"date_of_birth"`
	Allergies          string    `json:"allergies" db:"allergies"`
	MedicalHistory     string    `json:"medical_history" db:"medical_history"`
	CurrentMedications string    `json:"current_medications" db:"current_medications"`
}

// PatientSummary is the reduced patient shape embedded in appointment responses.
type PatientSummary struct {
	ID           int64  `json:"id" db:"id"`
	FirstName    string `json:"first_name" db:"first_name"`
	LastName     string `json:"last_name" db:"last_name"`
	RecordNumber string `json:"record_number" db:"record_number"`
}

// CreatePatientRequest represents patient creation parameters
type CreatePatientRequest struct {
	FirstName          string    `json:"first_name" binding:"required"`
	LastName           string    `json:"last_name" binding:"required"`
	Gender             string    `json:"gender" binding:"required"`
	DateOfBirth        time.Time `json:"date_of_birth" binding:"required"`
	Allergies          string    `json:"allergies"`
	MedicalHistory     string    `json:"medical_history"`
	CurrentMedications string    `json:"current_medications"`
}

// UpdatePatientRequest represents patient update parameters. Nil fields are
// left unchanged.
type UpdatePatientRequest struct {
	FirstName          *string    `json:"first_name"`
	LastName           *string    `json:"last_name"`
	Gender             *string    `json:"gender"`
	DateOfBirth        *time.Time `json:"date_of_birth"`
	Allergies          *string    `json:"allergies"`
	MedicalHistory     *string    `json:"medical_history"`
	CurrentMedications *string    `json:"current_medications"`
}

// RecordNumber derives the human-facing record number for an entity id.
// The id is zero-padded to three digits; larger ids simply widen the string.
func RecordNumber(prefix string, id int64) string {
	return fmt.Sprintf("%s-%03d", prefix, id)
}
