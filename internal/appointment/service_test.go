package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmillares/dental-booking-api/internal/auth"
	"github.com/jmillares/dental-booking-api/internal/calendar"
)

type fakeClient struct {
	events    []calendar.Event
	listErr   error
	insertErr error
	getErr    error
	patchErr  error
	deleteErr error

	inserted  []calendar.Event
	patchedID string
	patched   [2]string
	deletedID string
}

func (f *fakeClient) ListEvents(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeClient) InsertEvent(ctx context.Context, ev calendar.Event) (calendar.Event, error) {
	if f.insertErr != nil {
		return calendar.Event{}, f.insertErr
	}
	ev.ID = "evt-1"
	f.inserted = append(f.inserted, ev)
	return ev, nil
}

func (f *fakeClient) GetEvent(ctx context.Context, id string) (calendar.Event, error) {
	if f.getErr != nil {
		return calendar.Event{}, f.getErr
	}
	for _, ev := range f.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return calendar.Event{}, calendar.ErrEventNotFound
}

func (f *fakeClient) PatchEventText(ctx context.Context, id, summary, description string) error {
	if f.patchErr != nil {
		return f.patchErr
	}
	f.patchedID = id
	f.patched = [2]string{summary, description}
	return nil
}

func (f *fakeClient) DeleteEvent(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = id
	return nil
}

type fakeProvider struct {
	client *fakeClient
	err    error
}

func (f *fakeProvider) Client(ctx context.Context) (calendar.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type recordingNotifier struct {
	created []Appointment
	changed []Appointment
}

func (n *recordingNotifier) AppointmentCreated(ctx context.Context, a Appointment) {
	n.created = append(n.created, a)
}

func (n *recordingNotifier) AppointmentStatusChanged(ctx context.Context, a Appointment) {
	n.changed = append(n.changed, a)
}

func newTestService(client *fakeClient, admins ...string) (*Service, *recordingNotifier) {
	notifier := &recordingNotifier{}
	svc := NewService(&fakeProvider{client: client}, auth.NewPolicy(admins), notifier, nil, nil)
	return svc, notifier
}

var (
	adminUser   = auth.User{Email: "dentist@example.com", Role: auth.RoleAdmin}
	patientUser = auth.User{Email: "jane@example.com", Role: auth.RolePatient}
)

func mustEncode(t *testing.T, a Appointment, booker string) calendar.Event {
	t.Helper()
	ev, err := Encode(a, booker)
	require.NoError(t, err)
	ev.Summary = TagSummary(ev.Summary, a.Status)
	return ev
}

func TestListFiltersByVisibility(t *testing.T) {
	mine := mustEncode(t, Appointment{
		PatientName: "Jane Roe", PatientEmail: "jane@example.com",
		Date: "2026-09-15", Time: "10:00", Reason: "checkup", Status: StatusPending,
	}, "jane@example.com")
	mine.ID = "evt-mine"

	other := mustEncode(t, Appointment{
		PatientName: "Bob Poe", PatientEmail: "bob@example.com",
		Date: "2026-09-15", Time: "14:00", Reason: "cleaning", Status: StatusConfirmed,
	}, "bob@example.com")
	other.ID = "evt-other"

	unrelated := calendar.Event{ID: "evt-x", Summary: "Team lunch", Start: time.Now()}

	client := &fakeClient{events: []calendar.Event{mine, other, unrelated}}
	svc, _ := newTestService(client, "dentist@example.com")

	got, err := svc.List(context.Background(), patientUser)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "evt-mine", got[0].ID)

	all, err := svc.List(context.Background(), adminUser)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListUnavailableCredential(t *testing.T) {
	svc := NewService(&fakeProvider{err: errors.New("no tokens")}, auth.NewPolicy(nil), nil, nil, nil)

	_, err := svc.List(context.Background(), patientUser)
	assert.ErrorIs(t, err, ErrCalendarUnavailable)
}

func TestCreateForcesPendingForPatients(t *testing.T) {
	client := &fakeClient{}
	svc, notifier := newTestService(client, "dentist@example.com")

	got, err := svc.Create(context.Background(), patientUser, Appointment{
		PatientName:  "Jane Roe",
		PatientEmail: "jane@example.com",
		Date:         "2026-09-15",
		Time:         "2:30 PM",
		Reason:       "checkup",
		// Client input tries to self-confirm; the policy overrides it.
		Status:        StatusConfirmed,
		BookedByEmail: "spoofed@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "14:30", got.Time)
	assert.Equal(t, "jane@example.com", got.BookedByEmail)
	assert.Equal(t, "evt-1", got.ID)

	require.Len(t, client.inserted, 1)
	assert.Equal(t, "[PENDING] Regular Checkup - Jane Roe", client.inserted[0].Summary)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, StatusPending, notifier.created[0].Status)
}

func TestCreateAdminBooksConfirmed(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(client, "dentist@example.com")

	got, err := svc.Create(context.Background(), adminUser, Appointment{
		PatientName:  "Jane Roe",
		PatientEmail: "jane@example.com",
		Date:         "2026-09-15",
		Time:         "10:00",
		Reason:       "cleaning",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, got.Status)
	require.Len(t, client.inserted, 1)
	assert.Equal(t, "[CONFIRMED] Teeth Cleaning - Jane Roe", client.inserted[0].Summary)
}

func TestCreateInvalidDate(t *testing.T) {
	svc, _ := newTestService(&fakeClient{})

	_, err := svc.Create(context.Background(), patientUser, Appointment{Date: "soon", Time: "10:00"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdateStatusAdminOnly(t *testing.T) {
	svc, _ := newTestService(&fakeClient{}, "dentist@example.com")

	_, err := svc.UpdateStatus(context.Background(), patientUser, "evt-1", "confirmed")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	svc, _ := newTestService(&fakeClient{}, "dentist@example.com")

	_, err := svc.UpdateStatus(context.Background(), adminUser, "evt-1", "cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatusPatchesTitleAndDescription(t *testing.T) {
	ev := mustEncode(t, Appointment{
		PatientName: "Jane Roe", PatientEmail: "jane@example.com",
		Date: "2026-09-15", Time: "10:00", Reason: "checkup", Status: StatusPending,
	}, "jane@example.com")
	ev.ID = "evt-1"

	client := &fakeClient{events: []calendar.Event{ev}}
	svc, notifier := newTestService(client, "dentist@example.com")

	got, err := svc.UpdateStatus(context.Background(), adminUser, "evt-1", "confirmed")
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, got.Status)
	assert.Equal(t, "evt-1", client.patchedID)
	assert.Equal(t, "[CONFIRMED] Regular Checkup - Jane Roe", client.patched[0])
	assert.Contains(t, client.patched[1], "Status: confirmed")
	assert.NotContains(t, client.patched[1], "Status: pending")

	require.Len(t, notifier.changed, 1)
}

func TestUpdateStatusMissingEvent(t *testing.T) {
	svc, _ := newTestService(&fakeClient{}, "dentist@example.com")

	_, err := svc.UpdateStatus(context.Background(), adminUser, "nope", "confirmed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAdminOnly(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(client, "dentist@example.com")

	err := svc.Delete(context.Background(), patientUser, "evt-1")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), adminUser, "evt-1"))
	assert.Equal(t, "evt-1", client.deletedID)
}

func TestSlotsExcludesBookedAndDeclined(t *testing.T) {
	booked := mustEncode(t, Appointment{
		PatientName: "Jane Roe", PatientEmail: "jane@example.com",
		Date: "2026-09-15", Time: "14:00", Reason: "checkup", Status: StatusConfirmed,
	}, "jane@example.com")

	declined := mustEncode(t, Appointment{
		PatientName: "Bob Poe", PatientEmail: "bob@example.com",
		Date: "2026-09-15", Time: "10:00", Reason: "cleaning", Status: StatusDeclined,
	}, "bob@example.com")

	allDay := calendar.Event{
		Summary: "Office closed",
		Start:   time.Date(2026, 9, 15, 0, 0, 0, 0, Location),
		AllDay:  true,
	}

	client := &fakeClient{events: []calendar.Event{booked, declined, allDay}}
	svc, _ := newTestService(client)

	got := svc.Slots(context.Background(), "2026-09-15")
	assert.Empty(t, got.Warning)
	assert.Equal(t, []string{"14:00"}, got.BookedSlots)
	assert.NotContains(t, got.AvailableSlots, "14:00")
	assert.Contains(t, got.AvailableSlots, "10:00")
	assert.Len(t, got.AvailableSlots, 11)
}

func TestSlotsDegradesWhenCalendarUnavailable(t *testing.T) {
	svc := NewService(&fakeProvider{err: errors.New("no tokens")}, auth.NewPolicy(nil), nil, nil, nil)

	got := svc.Slots(context.Background(), "2026-09-15")
	assert.Equal(t, "Calendar unavailable, showing all slots", got.Warning)
	assert.Equal(t, Slots(), got.AvailableSlots)
	assert.Empty(t, got.BookedSlots)
}

func TestSlotsDegradesOnListFailure(t *testing.T) {
	client := &fakeClient{listErr: errors.New("boom")}
	svc, _ := newTestService(client)

	got := svc.Slots(context.Background(), "2026-09-15")
	assert.Equal(t, "Could not check availability", got.Warning)
	assert.Equal(t, Slots(), got.AvailableSlots)
}

func TestSlotsDegradesOnBadDate(t *testing.T) {
	svc, _ := newTestService(&fakeClient{})

	got := svc.Slots(context.Background(), "not-a-date")
	assert.Equal(t, "Could not check availability", got.Warning)
}

func TestMapCalendarErr(t *testing.T) {
	svc, _ := newTestService(&fakeClient{})

	assert.ErrorIs(t, svc.mapCalendarErr(calendar.ErrEventNotFound), ErrNotFound)
	assert.ErrorIs(t, svc.mapCalendarErr(calendar.ErrAccessDenied), ErrCalendarUnavailable)

	plain := errors.New("plain")
	assert.Equal(t, plain, svc.mapCalendarErr(plain))
}
