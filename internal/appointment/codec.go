package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmillares/dental-booking-api/internal/calendar"
)

// eventDuration is fixed for every appointment.
const eventDuration = 30 * time.Minute

// reminderMinutes: email reminders 24 hours and 1 hour before start.
var reminderMinutes = []int64{24 * 60, 60}

// recognizer terms: an event is an appointment only if its title contains one
// of these, or its description carries our field grammar.
var titleTerms = []string{"dental", "checkup", "cleaning", "appointment"}

// Encode maps an appointment onto a calendar event. The summary is untagged;
// callers prepend the status tag with TagSummary. The line-per-field
// description block is the only persisted structured data.
func Encode(a Appointment, bookedByEmail string) (calendar.Event, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+NormalizeTime(a.Time), Location)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("%w: %q %q", ErrInvalidDate, a.Date, a.Time)
	}

	label, known := reasonLabel(a.Reason)
	reasonText := a.Reason
	if known {
		reasonText = label
	}

	lines := []string{
		"Patient: " + a.PatientName,
		"Email: " + a.PatientEmail,
		"Phone: " + a.PatientPhone,
		"Reason: " + reasonText,
		"Status: " + string(a.Status),
		"BookedByEmail: " + bookedByEmail,
	}
	if a.Notes != "" {
		lines = append(lines, "Notes: "+a.Notes)
	}

	return calendar.Event{
		Summary:         label + " - " + a.PatientName,
		Description:     strings.Join(lines, "\n"),
		Start:           start,
		End:             start.Add(eventDuration),
		Attendees:       []string{a.PatientEmail, bookedByEmail},
		ReminderMinutes: reminderMinutes,
	}, nil
}

// Decode maps a calendar event back to an appointment. Unknown reason text
// passes through lower-cased; a status tag in the title overrides the
// Status: line; neither present defaults to pending.
func Decode(ev calendar.Event) Appointment {
	lines := descriptionLines(ev.Description)

	patientEmail := fieldValue(lines, "Email")
	bookedBy := fieldValue(lines, "BookedByEmail")
	if bookedBy == "" {
		// Legacy events never recorded the booker.
		bookedBy = patientEmail
	}

	patientName := fieldValue(lines, "Patient")
	if patientName == "" {
		patientName = "Unknown Patient"
	}

	reasonText := fieldValue(lines, "Reason")
	if reasonText == "" {
		reasonText = "other"
	}
	reason, ok := reverseReason[lower(reasonText)]
	if !ok {
		reason = lower(reasonText)
	}

	statusText := fieldValue(lines, "Status")
	if statusText == "" {
		statusText = string(StatusPending)
	}
	status := Status(lower(statusText))
	if tagged, ok := titleStatus(ev.Summary); ok {
		status = tagged
	}

	var date, startTime string
	if !ev.Start.IsZero() {
		local := ev.Start.In(Location)
		date = local.Format("2006-01-02")
		if ev.AllDay {
			startTime = DefaultSlot
		} else {
			startTime = local.Format("15:04")
		}
	}

	return Appointment{
		ID:            ev.ID,
		GoogleEventID: ev.ID,
		PatientName:   patientName,
		PatientEmail:  patientEmail,
		PatientPhone:  fieldValue(lines, "Phone"),
		Date:          date,
		Time:          startTime,
		Reason:        reason,
		Status:        status,
		Notes:         fieldValue(lines, "Notes"),
		BookedByEmail: bookedBy,
	}
}

// IsAppointment reports whether an event belongs to the booking system, as
// opposed to an unrelated entry on the shared calendar.
func IsAppointment(ev calendar.Event) bool {
	summary := lower(ev.Summary)
	for _, term := range titleTerms {
		if strings.Contains(summary, term) {
			return true
		}
	}
	description := lower(ev.Description)
	return strings.Contains(description, "patient:") || strings.Contains(description, "bookedbyemail:")
}

func descriptionLines(description string) []string {
	var out []string
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// fieldValue finds the first line starting with label (case-insensitive) and
// returns everything after the first colon, trimmed. Later colons are part of
// the value.
func fieldValue(lines []string, label string) string {
	prefix := lower(label) + ":"
	for _, line := range lines {
		if strings.HasPrefix(lower(line), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}
