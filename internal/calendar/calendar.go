// Package calendar wraps the shared Google Calendar that acts as the
// appointment system of record.
package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEventNotFound is returned when the backing event id does not exist.
	ErrEventNotFound = errors.New("calendar: event not found")
	// ErrAccessDenied is returned when the shared credential is rejected
	// by the provider (expired grant, revoked access).
	ErrAccessDenied = errors.New("calendar: access denied")
)

// Event is the provider-neutral view of a calendar event. Only the fields
// the booking protocol reads and writes are carried.
type Event struct {
	ID              string
	Summary         string
	Description     string
	Start           time.Time
	End             time.Time
	AllDay          bool
	Attendees       []string
	ReminderMinutes []int64
}

// Client is the calendar collaborator used by the appointment service.
type Client interface {
	// ListEvents returns single events between from and to, ordered by start time.
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	// InsertEvent creates a new event and returns it with the provider id set.
	InsertEvent(ctx context.Context, ev Event) (Event, error)
	// GetEvent fetches one event by id.
	GetEvent(ctx context.Context, id string) (Event, error)
	// PatchEventText rewrites only the summary and description of an event,
	// leaving start/end/attendees/reminders untouched.
	PatchEventText(ctx context.Context, id, summary, description string) error
	// DeleteEvent removes an event outright.
	DeleteEvent(ctx context.Context, id string) error
}

// Provider hands out a Client backed by the current shared credential.
// It fails when no usable credential exists.
type Provider interface {
	Client(ctx context.Context) (Client, error)
}
