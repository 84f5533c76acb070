package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/petchlovefamily/clinic-system/internal/model"
)

func TestBuildDigestBodyEmpty(t *testing.T) {
	day := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	body := buildDigestBody(day, nil)
	assert.Contains(t, body, "No appointments scheduled")
}

func TestBuildDigestBodyListsAppointments(t *testing.T) {
	day := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	apt := &model.AppointmentDetail{
		Appointment: model.Appointment{
			RecordNumber: "APT-007",
			StartTime:    time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
			EndTime:      time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
			Status:       model.AppointmentStatusPending,
		},
		Patient:   model.PatientSummary{FirstName: "Jane", LastName: "Doe", RecordNumber: "PAT-001"},
		Clinician: model.ClinicianSummary{Username: "dr.smith"},
	}

	body := buildDigestBody(day, []*model.AppointmentDetail{apt})
	assert.Contains(t, body, "09:00 - 09:30")
	assert.Contains(t, body, "APT-007")
	assert.Contains(t, body, "Jane Doe")
	assert.Contains(t, body, "dr.smith")
	assert.Contains(t, body, "Total: 1 appointment(s)")
}
