package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleClient implements Client on top of the Google Calendar v3 API.
// All mutations are sent with sendUpdates=all so attendees get the
// provider's own notification emails.
type GoogleClient struct {
	service    *gcal.Service
	calendarID string
	loc        *time.Location
}

// NewGoogleClient builds a client for one calendar using an already-fresh
// token. The token source is static on purpose: refreshing is the credential
// manager's job, not the transport's.
func NewGoogleClient(ctx context.Context, tok *oauth2.Token, calendarID string, loc *time.Location) (*GoogleClient, error) {
	service, err := gcal.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleClient{service: service, calendarID: calendarID, loc: loc}, nil
}

func (g *GoogleClient) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	resp, err := g.service.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		MaxResults(100).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapGoogleErr("list events", err)
	}

	var out []Event
	for _, item := range resp.Items {
		out = append(out, g.fromGoogle(item))
	}
	return out, nil
}

func (g *GoogleClient) InsertEvent(ctx context.Context, ev Event) (Event, error) {
	created, err := g.service.Events.Insert(g.calendarID, g.toGoogle(ev)).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return Event{}, wrapGoogleErr("insert event", err)
	}
	ev.ID = created.Id
	return ev, nil
}

func (g *GoogleClient) GetEvent(ctx context.Context, id string) (Event, error) {
	item, err := g.service.Events.Get(g.calendarID, id).Context(ctx).Do()
	if err != nil {
		return Event{}, wrapGoogleErr("get event", err)
	}
	return g.fromGoogle(item), nil
}

func (g *GoogleClient) PatchEventText(ctx context.Context, id, summary, description string) error {
	_, err := g.service.Events.Patch(g.calendarID, id, &gcal.Event{
		Summary:     summary,
		Description: description,
	}).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return wrapGoogleErr("patch event", err)
	}
	return nil
}

func (g *GoogleClient) DeleteEvent(ctx context.Context, id string) error {
	err := g.service.Events.Delete(g.calendarID, id).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return wrapGoogleErr("delete event", err)
	}
	return nil
}

func (g *GoogleClient) toGoogle(ev Event) *gcal.Event {
	out := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		},
	}
	for _, email := range ev.Attendees {
		out.Attendees = append(out.Attendees, &gcal.EventAttendee{Email: email})
	}
	if len(ev.ReminderMinutes) > 0 {
		out.Reminders = &gcal.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
		}
		for _, minutes := range ev.ReminderMinutes {
			out.Reminders.Overrides = append(out.Reminders.Overrides, &gcal.EventReminder{
				Method:  "email",
				Minutes: minutes,
			})
		}
	}
	return out
}

func (g *GoogleClient) fromGoogle(item *gcal.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
	}
	if item.Start != nil {
		if item.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
				ev.Start = t.In(g.loc)
			}
		} else if item.Start.Date != "" {
			// All-day events carry a bare date.
			if t, err := time.ParseInLocation("2006-01-02", item.Start.Date, g.loc); err == nil {
				ev.Start = t
				ev.AllDay = true
			}
		}
	}
	if item.End != nil && item.End.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			ev.End = t.In(g.loc)
		}
	}
	for _, attendee := range item.Attendees {
		ev.Attendees = append(ev.Attendees, attendee.Email)
	}
	return ev
}

func wrapGoogleErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 404:
			return fmt.Errorf("%s: %w", op, ErrEventNotFound)
		case 401, 403:
			return fmt.Errorf("%s: %w", op, ErrAccessDenied)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
