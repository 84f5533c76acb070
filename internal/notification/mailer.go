package notification

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/petchlovefamily/clinic-system/internal/config"
	"github.com/petchlovefamily/clinic-system/internal/model"
)

// Mailer sends operational email through SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendScheduleDigest mails a plain-text summary of the upcoming appointments.
func (m *Mailer) SendScheduleDigest(to string, day time.Time, appointments []*model.AppointmentDetail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Clinic schedule for %s", day.Format("Mon, 02 Jan 2006")))
	msg.SetBody("text/plain", buildDigestBody(day, appointments))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send schedule digest: %w", err)
	}
	return nil
}

func buildDigestBody(day time.Time, appointments []*model.AppointmentDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schedule for %s\n\n", day.Format("Monday, 02 January 2006"))

	if len(appointments) == 0 {
		b.WriteString("No appointments scheduled.\n")
		return b.String()
	}

	for _, apt := range appointments {
		fmt.Fprintf(&b, "%s - %s  %s  %s %s (%s) with %s  [%s]\n",
			apt.StartTime.Format("15:04"),
			apt.EndTime.Format("15:04"),
			apt.RecordNumber,
			apt.Patient.FirstName,
			apt.Patient.LastName,
			apt.Patient.RecordNumber,
			apt.Clinician.Username,
			apt.Status,
		)
	}

	fmt.Fprintf(&b, "\nTotal: %d appointment(s)\n", len(appointments))
	return b.String()
}
