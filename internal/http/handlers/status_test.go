package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jmillares/dental-booking-api/internal/auth"
	"github.com/jmillares/dental-booking-api/internal/credential"
)

func newStatusTestHandler(store *fakeCredStore) (*StatusHandler, *credential.Manager) {
	policy := auth.NewPolicy([]string{"dentist@example.com"})
	manager := credential.NewManager(&oauth2.Config{}, store, nil, nil)
	return NewStatusHandler(manager, store, policy, "clinic@group.calendar.google.com", nil), manager
}

func TestCalendarStatusNotConfigured(t *testing.T) {
	h, _ := newStatusTestHandler(&fakeCredStore{})

	rec := httptest.NewRecorder()
	h.CalendarStatus(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Configured  bool     `json:"sharedCalendarConfigured"`
		CalendarID  string   `json:"sharedCalendarId"`
		AdminEmails []string `json:"adminEmails"`
		Message     string   `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Configured)
	assert.Equal(t, "clinic@group.calendar.google.com", body.CalendarID)
	assert.Equal(t, []string{"dentist@example.com"}, body.AdminEmails)
	assert.Equal(t, "Admin needs to authenticate first", body.Message)
}

func TestCalendarStatusReady(t *testing.T) {
	h, manager := newStatusTestHandler(&fakeCredStore{})
	manager.Seed(context.Background(), &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Expiry:       time.Now().Add(time.Hour),
	}, "dentist@example.com")

	rec := httptest.NewRecorder()
	h.CalendarStatus(rec, httptest.NewRequest(http.MethodGet, "/api/calendar/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["sharedCalendarConfigured"])
	assert.Equal(t, "Shared calendar is ready", body["message"])
}

func TestDebugStatus(t *testing.T) {
	store := &fakeCredStore{rec: &credential.Record{
		Tokens: &oauth2.Token{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(time.Hour),
		},
		UserEmail: "dentist@example.com",
		SavedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}}
	h, manager := newStatusTestHandler(store)
	require.NoError(t, manager.Load(context.Background()))

	rec := httptest.NewRecorder()
	h.DebugStatus(rec, httptest.NewRequest(http.MethodGet, "/api/debug/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Store  map[string]any `json:"store"`
		Memory map[string]any `json:"memory"`
		Config map[string]any `json:"config"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body.Store["connected"])
	assert.Equal(t, true, body.Store["hasData"])
	assert.Equal(t, "dentist@example.com", body.Store["userEmail"])
	assert.Equal(t, true, body.Memory["hasTokens"])
	assert.Equal(t, "dentist@example.com", body.Memory["adminEmail"])
	assert.Equal(t, "clinic@group.calendar.google.com", body.Config["calendarId"])
}
