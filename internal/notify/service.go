package notify

import (
	"context"
	"fmt"

	"github.com/jmillares/dental-booking-api/internal/appointment"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

// Service sends booking emails to patients. Every send is best effort: the
// calendar already notified attendees via the provider, these are the
// clinic's own wording on top.
type Service struct {
	sender EmailSender
	logger *logging.Logger
}

func NewService(sender EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, logger: logger}
}

// AppointmentCreated emails the patient after a booking request.
func (s *Service) AppointmentCreated(ctx context.Context, a appointment.Appointment) {
	if s.sender == nil || a.PatientEmail == "" {
		return
	}

	subject := "Appointment request received"
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received your appointment request for %s at %s.\nWe'll confirm it shortly.\n\nDental Clinic",
		a.PatientName, a.Date, a.Time,
	)
	if a.Status == appointment.StatusConfirmed {
		subject = "Appointment confirmed"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour appointment on %s at %s is confirmed.\n\nDental Clinic",
			a.PatientName, a.Date, a.Time,
		)
	}

	s.send(ctx, EmailMessage{To: a.PatientEmail, ToName: a.PatientName, Subject: subject, Body: body})
}

// AppointmentStatusChanged emails the patient after an admin decision.
func (s *Service) AppointmentStatusChanged(ctx context.Context, a appointment.Appointment) {
	if s.sender == nil || a.PatientEmail == "" {
		return
	}

	var subject, body string
	switch a.Status {
	case appointment.StatusConfirmed:
		subject = "Appointment confirmed"
		body = fmt.Sprintf("Hi %s,\n\nYour appointment on %s at %s has been confirmed.\n\nDental Clinic",
			a.PatientName, a.Date, a.Time)
	case appointment.StatusDeclined:
		subject = "Appointment declined"
		body = fmt.Sprintf("Hi %s,\n\nUnfortunately your appointment on %s at %s could not be accommodated.\nPlease pick another slot.\n\nDental Clinic",
			a.PatientName, a.Date, a.Time)
	default:
		subject = "Appointment update"
		body = fmt.Sprintf("Hi %s,\n\nYour appointment on %s at %s is back under review.\n\nDental Clinic",
			a.PatientName, a.Date, a.Time)
	}

	s.send(ctx, EmailMessage{To: a.PatientEmail, ToName: a.PatientName, Subject: subject, Body: body})
}

func (s *Service) send(ctx context.Context, msg EmailMessage) {
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("booking email failed", "error", err, "to", msg.To)
	}
}

var _ appointment.Notifier = (*Service)(nil)
