// Package appointment implements the booking protocol: the mapping between
// structured appointment records and shared-calendar events, the status
// transition rules, and the service orchestrating calendar operations.
package appointment

import "errors"

// Status is an appointment's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
)

// ParseStatus validates a caller-supplied status value.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusDeclined:
		return Status(s), true
	}
	return "", false
}

// Appointment is derived from a calendar event; it is never persisted
// separately. ID equals the backing calendar event id.
type Appointment struct {
	ID            string `json:"id"`
	GoogleEventID string `json:"googleEventId,omitempty"`
	PatientName   string `json:"patientName"`
	PatientEmail  string `json:"patientEmail"`
	PatientPhone  string `json:"patientPhone"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Reason        string `json:"reason"`
	Status        Status `json:"status"`
	Notes         string `json:"notes"`
	BookedByEmail string `json:"bookedByEmail"`
}

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrForbidden           = errors.New("admin access required")
	ErrCalendarUnavailable = errors.New("shared calendar not available")
	ErrNotFound            = errors.New("appointment not found")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidDate         = errors.New("invalid appointment date")
)

const fallbackReasonLabel = "Dental Appointment"

// reasonLabels maps the reason enum to the human label written into events.
var reasonLabels = map[string]string{
	"checkup":      "Regular Checkup",
	"cleaning":     "Teeth Cleaning",
	"filling":      "Dental Filling",
	"extraction":   "Tooth Extraction",
	"emergency":    "Emergency Visit",
	"consultation": "Consultation",
	"other":        fallbackReasonLabel,
}

// reverseReason maps lower-cased labels back to enum values.
var reverseReason = func() map[string]string {
	out := make(map[string]string, len(reasonLabels))
	for reason, label := range reasonLabels {
		out[lower(label)] = reason
	}
	return out
}()

// reasonLabel returns the human label for a reason and whether it is a
// known enum value.
func reasonLabel(reason string) (string, bool) {
	label, ok := reasonLabels[reason]
	if !ok {
		return fallbackReasonLabel, false
	}
	return label, true
}
