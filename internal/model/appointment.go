package model

import (
	"time"
)

// AppointmentRecordPrefix prefixes derived appointment record numbers.
const AppointmentRecordPrefix = "APT"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusCompleted:
		return true
	}
	return false
}

// Appointment represents a scheduled visit. Note is administrative and
// reception-writable; ClinicianNote is clinical and clinician-writable.
type Appointment struct {
	Base
	RecordNumber  string            `json:"record_number" db:"record_number"`
	PatientID     int64             `json:"patient_id" db:"patient_id"`
	ClinicianID   int64             `json:"clinician_id" db:"clinician_id"`
	StartTime     time.Time         `json:"start_time" db:"start_time"`
	EndTime       time.Time         `json:"end_time" db:"end_time"`
	Note          string            `json:"note" db:"note"`
	ClinicianNote string            `json:"clinician_note" db:"clinician_note"`
	Status        AppointmentStatus `json:"status" db:"status"`
	CreatedByID   int64             `json:"created_by_id" db:"created_by_id"`
}

// AppointmentDetail is the appointment joined with patient and clinician
// summaries. This join shape is part of the API contract.
type AppointmentDetail struct {
	Appointment
	Patient   PatientSummary   `json:"patient"`
	Clinician ClinicianSummary `json:"clinician"`
}

// CreateAppointmentRequest represents appointment creation parameters
type CreateAppointmentRequest struct {
	PatientID   int64     `json:"patient_id" binding:"required"`
	ClinicianID int64     `json:"clinician_id" binding:"required"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Note        string    `json:"note"`
}

// UpdateAppointmentRequest represents appointment update parameters. Which
// fields are honored depends on the caller's role; the rest are ignored or
// rejected per the scheduler's masking rules.
type UpdateAppointmentRequest struct {
	PatientID     *int64             `json:"patient_id"`
	ClinicianID   *int64             `json:"clinician_id"`
	StartTime     *time.Time         `json:"start_time"`
	EndTime       *time.Time         `json:"end_time"`
	Note          *string            `json:"note"`
	ClinicianNote *string            `json:"clinician_note"`
	Status        *AppointmentStatus `json:"status"`
}

// AppointmentPatch is the resolved set of column changes after role masking.
// Nil fields are left unchanged.
type AppointmentPatch struct {
	PatientID     *int64
	ClinicianID   *int64
	StartTime     *time.Time
	EndTime       *time.Time
	Note          *string
	ClinicianNote *string
	Status        *AppointmentStatus
}

// Empty reports whether the patch changes nothing.
func (p *AppointmentPatch) Empty() bool {
	return p.PatientID == nil && p.ClinicianID == nil && p.StartTime == nil &&
		p.EndTime == nil && p.Note == nil && p.ClinicianNote == nil && p.Status == nil
}

// TouchesSchedule reports whether the patch changes the clinician or the
// time range, which requires re-running the overlap check.
func (p *AppointmentPatch) TouchesSchedule() bool {
	return p.ClinicianID != nil || p.StartTime != nil || p.EndTime != nil
}

// Overlaps reports whether two half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching boundaries do not conflict.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
