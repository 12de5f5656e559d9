package appointment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmillares/dental-booking-api/internal/calendar"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	reasons := []string{"checkup", "cleaning", "filling", "extraction", "emergency", "consultation", "other"}

	for _, reason := range reasons {
		t.Run(reason, func(t *testing.T) {
			in := Appointment{
				PatientName:  "Jane Roe",
				PatientEmail: "jane@example.com",
				PatientPhone: "555-0100",
				Date:         "2026-09-15",
				Time:         "14:30",
				Reason:       reason,
				Status:       StatusPending,
				Notes:        "sensitive molar",
			}

			ev, err := Encode(in, "booker@example.com")
			require.NoError(t, err)

			out := Decode(ev)
			assert.Equal(t, in.PatientName, out.PatientName)
			assert.Equal(t, in.PatientEmail, out.PatientEmail)
			assert.Equal(t, in.PatientPhone, out.PatientPhone)
			assert.Equal(t, in.Date, out.Date)
			assert.Equal(t, in.Time, out.Time)
			assert.Equal(t, reason, out.Reason)
			assert.Equal(t, in.Status, out.Status)
			assert.Equal(t, in.Notes, out.Notes)
			assert.Equal(t, "booker@example.com", out.BookedByEmail)
		})
	}
}

func TestEncodeSummaryAndSchedule(t *testing.T) {
	ev, err := Encode(Appointment{
		PatientName:  "Jane Roe",
		PatientEmail: "jane@example.com",
		Date:         "2026-09-15",
		Time:         "10:00",
		Reason:       "cleaning",
		Status:       StatusPending,
	}, "booker@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Teeth Cleaning - Jane Roe", ev.Summary)
	assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))
	assert.Equal(t, []string{"jane@example.com", "booker@example.com"}, ev.Attendees)
	assert.Equal(t, []int64{1440, 60}, ev.ReminderMinutes)

	assert.Contains(t, ev.Description, "Patient: Jane Roe")
	assert.Contains(t, ev.Description, "Reason: Teeth Cleaning")
	assert.Contains(t, ev.Description, "Status: pending")
	assert.NotContains(t, ev.Description, "Notes:")
}

func TestEncodeUnknownReasonFallsBack(t *testing.T) {
	ev, err := Encode(Appointment{
		PatientName:  "Jane Roe",
		PatientEmail: "jane@example.com",
		Date:         "2026-09-15",
		Time:         "10:00",
		Reason:       "whitening",
		Status:       StatusPending,
	}, "booker@example.com")
	require.NoError(t, err)

	// Unknown reasons keep their text in the description but use the fallback title.
	assert.Equal(t, "Dental Appointment - Jane Roe", ev.Summary)
	assert.Contains(t, ev.Description, "Reason: whitening")
	assert.Equal(t, "whitening", Decode(ev).Reason)
}

func TestEncodeInvalidDate(t *testing.T) {
	_, err := Encode(Appointment{Date: "not-a-date", Time: "10:00"}, "x@example.com")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDecodeTitleTagOverridesStatusLine(t *testing.T) {
	ev := calendar.Event{
		Summary:     "[DECLINED] Regular Checkup - Jane Roe",
		Description: "Patient: Jane Roe\nStatus: confirmed",
		Start:       time.Date(2026, 9, 15, 10, 0, 0, 0, Location),
	}
	assert.Equal(t, StatusDeclined, Decode(ev).Status)
}

func TestDecodeDefaults(t *testing.T) {
	ev := calendar.Event{
		Summary:     "Dental Appointment",
		Description: "Email: jane@example.com",
		Start:       time.Date(2026, 9, 15, 10, 0, 0, 0, Location),
	}
	a := Decode(ev)
	assert.Equal(t, "Unknown Patient", a.PatientName)
	assert.Equal(t, "other", a.Reason)
	assert.Equal(t, StatusPending, a.Status)
	// Legacy events without a booker line fall back to the patient email.
	assert.Equal(t, "jane@example.com", a.BookedByEmail)
}

func TestDecodeAllDayEvent(t *testing.T) {
	ev := calendar.Event{
		Summary:     "Dental Appointment - Jane Roe",
		Description: "Patient: Jane Roe",
		Start:       time.Date(2026, 9, 15, 0, 0, 0, 0, Location),
		AllDay:      true,
	}
	a := Decode(ev)
	assert.Equal(t, "2026-09-15", a.Date)
	assert.Equal(t, DefaultSlot, a.Time)
}

func TestDecodeValueKeepsLaterColons(t *testing.T) {
	ev := calendar.Event{
		Summary:     "Dental Appointment - Jane Roe",
		Description: "Patient: Jane Roe\nNotes: ref: Dr. Smith: urgent",
		Start:       time.Date(2026, 9, 15, 10, 0, 0, 0, Location),
	}
	assert.Equal(t, "ref: Dr. Smith: urgent", Decode(ev).Notes)
}

func TestIsAppointment(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		desc    string
		want    bool
	}{
		{"dental in title", "Dental visit", "", true},
		{"checkup in title", "Annual CHECKUP", "", true},
		{"cleaning in title", "Teeth Cleaning - Jane", "", true},
		{"appointment in title", "Some Appointment", "", true},
		{"patient field in description", "Staff meeting", "Patient: Jane Roe", true},
		{"booker field in description", "Blocked", "BookedByEmail: x@example.com", true},
		{"unrelated event", "Team lunch", "bring snacks", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsAppointment(calendar.Event{Summary: tt.summary, Description: tt.desc})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldValueFirstMatchWins(t *testing.T) {
	lines := descriptionLines("Patient: First\nPatient: Second")
	assert.Equal(t, "First", fieldValue(lines, "Patient"))
	assert.Equal(t, "", fieldValue(lines, "Email"))
}

func TestDescriptionLinesTrimsBlank(t *testing.T) {
	lines := descriptionLines("Patient: Jane\n\n  \nEmail: j@example.com\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Email:"))
}
