package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmillares/dental-booking-api/internal/appointment"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errText, message string) {
	body := map[string]string{"error": errText}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

// writeServiceError maps the error taxonomy onto HTTP statuses with the
// guidance messages the frontend expects.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Not authenticated", "")
	case errors.Is(err, appointment.ErrForbidden):
		writeError(w, http.StatusForbidden, "Admin access required", "")
	case errors.Is(err, appointment.ErrCalendarUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Shared calendar not available",
			"Please ensure an admin has authenticated to enable shared calendar access")
	case errors.Is(err, appointment.ErrNotFound):
		writeError(w, http.StatusNotFound, "Appointment not found", "")
	case errors.Is(err, appointment.ErrInvalidStatus), errors.Is(err, appointment.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "")
	}
}
