package handlers

import (
	"net/http"

	"github.com/jmillares/dental-booking-api/internal/auth"
	"github.com/jmillares/dental-booking-api/internal/credential"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

// StatusHandler reports shared-credential readiness.
type StatusHandler struct {
	manager    *credential.Manager
	store      credential.Store
	policy     *auth.Policy
	calendarID string
	logger     *logging.Logger
}

func NewStatusHandler(manager *credential.Manager, store credential.Store, policy *auth.Policy, calendarID string, logger *logging.Logger) *StatusHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatusHandler{manager: manager, store: store, policy: policy, calendarID: calendarID, logger: logger}
}

// GET /api/calendar/status
func (h *StatusHandler) CalendarStatus(w http.ResponseWriter, r *http.Request) {
	ready := h.manager.Ready()
	message := "Admin needs to authenticate first"
	if ready {
		message = "Shared calendar is ready"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sharedCalendarConfigured": ready,
		"sharedCalendarId":         h.calendarID,
		"adminEmails":              h.policy.AdminEmails(),
		"message":                  message,
	})
}

// GET /api/debug/status — store vs memory view of the shared credential.
func (h *StatusHandler) DebugStatus(w http.ResponseWriter, r *http.Request) {
	store := map[string]any{"connected": true}
	rec, err := h.store.Load(r.Context())
	if err != nil {
		h.logger.Error("debug status store load failed", "error", err)
		store["connected"] = false
		store["error"] = err.Error()
	} else {
		store["hasData"] = rec != nil
		if rec != nil {
			store["userEmail"] = rec.UserEmail
			store["savedAt"] = rec.SavedAt
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"store": store,
		"memory": map[string]any{
			"hasTokens":  h.manager.Ready(),
			"adminEmail": h.manager.AdminEmail(),
		},
		"config": map[string]any{
			"calendarId":  h.calendarID,
			"adminEmails": h.policy.AdminEmails(),
		},
	})
}
