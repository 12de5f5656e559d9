package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmillares/dental-booking-api/internal/auth"
	"github.com/jmillares/dental-booking-api/internal/calendar"
	"github.com/jmillares/dental-booking-api/internal/observability/metrics"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

// List window: 30 days back, 90 days ahead.
const (
	listWindowPastDays   = 30
	listWindowFutureDays = 90
)

// Notifier sends best-effort booking emails. Implementations must never
// block the booking flow on failure.
type Notifier interface {
	AppointmentCreated(ctx context.Context, a Appointment)
	AppointmentStatusChanged(ctx context.Context, a Appointment)
}

// Service orchestrates appointment operations against the shared calendar.
type Service struct {
	provider calendar.Provider
	policy   *auth.Policy
	notifier Notifier
	logger   *logging.Logger
	metrics  *metrics.BookingMetrics
}

// NewService wires the orchestrator. notifier and m may be nil.
func NewService(provider calendar.Provider, policy *auth.Policy, notifier Notifier, logger *logging.Logger, m *metrics.BookingMetrics) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{provider: provider, policy: policy, notifier: notifier, logger: logger, metrics: m}
}

// List returns the appointments visible to user within the fetch window.
func (s *Service) List(ctx context.Context, user auth.User) ([]Appointment, error) {
	client, err := s.provider.Client(ctx)
	if err != nil {
		s.metrics.ObserveOp("list", "unavailable")
		return nil, fmt.Errorf("%w: %s", ErrCalendarUnavailable, err)
	}

	now := time.Now()
	started := time.Now()
	events, err := client.ListEvents(ctx, now.AddDate(0, 0, -listWindowPastDays), now.AddDate(0, 0, listWindowFutureDays))
	s.metrics.ObserveCalendarLatency("list", time.Since(started).Seconds())
	if err != nil {
		s.metrics.ObserveOp("list", "error")
		return nil, s.mapCalendarErr(err)
	}

	appointments := []Appointment{}
	for _, ev := range events {
		if !IsAppointment(ev) {
			continue
		}
		a := Decode(ev)
		if !s.policy.CanView(user, a.BookedByEmail, a.PatientEmail) {
			continue
		}
		appointments = append(appointments, a)
	}

	s.metrics.ObserveOp("list", "ok")
	return appointments, nil
}

// Create books a new appointment. The status is forced by the creation
// policy and the booker is always the verified caller, never client input.
func (s *Service) Create(ctx context.Context, user auth.User, req Appointment) (Appointment, error) {
	client, err := s.provider.Client(ctx)
	if err != nil {
		s.metrics.ObserveOp("create", "unavailable")
		return Appointment{}, fmt.Errorf("%w: %s", ErrCalendarUnavailable, err)
	}

	req.Time = NormalizeTime(req.Time)
	req.Status = CreationStatus(s.policy.IsAdmin(user.Email))
	req.BookedByEmail = user.Email

	ev, err := Encode(req, user.Email)
	if err != nil {
		s.metrics.ObserveOp("create", "invalid")
		return Appointment{}, err
	}
	ev.Summary = TagSummary(ev.Summary, req.Status)

	started := time.Now()
	created, err := client.InsertEvent(ctx, ev)
	s.metrics.ObserveCalendarLatency("insert", time.Since(started).Seconds())
	if err != nil {
		s.metrics.ObserveOp("create", "error")
		return Appointment{}, s.mapCalendarErr(err)
	}

	req.ID = created.ID
	req.GoogleEventID = created.ID
	s.metrics.ObserveOp("create", "ok")
	s.logger.Info("appointment created",
		"id", req.ID,
		"status", req.Status,
		"booked_by", req.BookedByEmail,
	)
	if s.notifier != nil {
		s.notifier.AppointmentCreated(ctx, req)
	}
	return req, nil
}

// UpdateStatus applies a status transition to an existing appointment.
// Admin only.
func (s *Service) UpdateStatus(ctx context.Context, user auth.User, id, statusValue string) (Appointment, error) {
	if !s.policy.IsAdmin(user.Email) {
		return Appointment{}, ErrForbidden
	}
	st, ok := ParseStatus(statusValue)
	if !ok {
		return Appointment{}, fmt.Errorf("%w: %q", ErrInvalidStatus, statusValue)
	}

	client, err := s.provider.Client(ctx)
	if err != nil {
		s.metrics.ObserveOp("update_status", "unavailable")
		return Appointment{}, fmt.Errorf("%w: %s", ErrCalendarUnavailable, err)
	}

	ev, err := client.GetEvent(ctx, id)
	if err != nil {
		s.metrics.ObserveOp("update_status", "error")
		return Appointment{}, s.mapCalendarErr(err)
	}

	ev.Summary, ev.Description = ApplyTransition(ev.Summary, ev.Description, st)
	if err := client.PatchEventText(ctx, id, ev.Summary, ev.Description); err != nil {
		s.metrics.ObserveOp("update_status", "error")
		return Appointment{}, s.mapCalendarErr(err)
	}

	a := Decode(ev)
	s.metrics.ObserveOp("update_status", "ok")
	s.logger.Info("appointment status updated", "id", id, "status", st, "by", user.Email)
	if s.notifier != nil {
		s.notifier.AppointmentStatusChanged(ctx, a)
	}
	return a, nil
}

// Delete removes an appointment outright. Admin only.
func (s *Service) Delete(ctx context.Context, user auth.User, id string) error {
	if !s.policy.IsAdmin(user.Email) {
		return ErrForbidden
	}

	client, err := s.provider.Client(ctx)
	if err != nil {
		s.metrics.ObserveOp("delete", "unavailable")
		return fmt.Errorf("%w: %s", ErrCalendarUnavailable, err)
	}

	if err := client.DeleteEvent(ctx, id); err != nil {
		s.metrics.ObserveOp("delete", "error")
		return s.mapCalendarErr(err)
	}

	s.metrics.ObserveOp("delete", "ok")
	s.logger.Info("appointment deleted", "id", id, "by", user.Email)
	return nil
}

// SlotAvailability is the availability report for one day.
type SlotAvailability struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
	BookedSlots    []string `json:"bookedSlots"`
	Warning        string   `json:"warning,omitempty"`
}

// Slots reports availability for a day. When the shared calendar cannot be
// reached it degrades to the full slot list with a warning instead of failing.
func (s *Service) Slots(ctx context.Context, date string) SlotAvailability {
	fallback := SlotAvailability{Date: date, AvailableSlots: Slots(), BookedSlots: []string{}}

	client, err := s.provider.Client(ctx)
	if err != nil {
		s.metrics.ObserveOp("slots", "unavailable")
		fallback.Warning = "Calendar unavailable, showing all slots"
		return fallback
	}

	dayStart, err := time.ParseInLocation("2006-01-02", date, Location)
	if err != nil {
		fallback.Warning = "Could not check availability"
		return fallback
	}

	events, err := client.ListEvents(ctx, dayStart, dayStart.Add(24*time.Hour-time.Second))
	if err != nil {
		s.metrics.ObserveOp("slots", "error")
		s.logger.Error("slot availability fetch failed", "date", date, "error", err)
		fallback.Warning = "Could not check availability"
		return fallback
	}

	booked := []string{}
	taken := map[string]bool{}
	for _, ev := range events {
		if ev.AllDay || ev.Start.IsZero() {
			continue
		}
		// Declined appointments do not block their slot.
		summary := strings.ToLower(ev.Summary)
		description := strings.ToLower(ev.Description)
		if strings.Contains(summary, "[declined]") || strings.Contains(description, "status: declined") {
			continue
		}
		slot := ev.Start.In(Location).Format("15:04")
		booked = append(booked, slot)
		taken[slot] = true
	}

	available := []string{}
	for _, slot := range Slots() {
		if !taken[slot] {
			available = append(available, slot)
		}
	}

	s.metrics.ObserveOp("slots", "ok")
	return SlotAvailability{Date: date, AvailableSlots: available, BookedSlots: booked}
}

func (s *Service) mapCalendarErr(err error) error {
	switch {
	case errors.Is(err, calendar.ErrEventNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	case errors.Is(err, calendar.ErrAccessDenied):
		return fmt.Errorf("%w: %s", ErrCalendarUnavailable, err)
	}
	return err
}
