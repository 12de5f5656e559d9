package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmillares/dental-booking-api/internal/appointment"
	httpmiddleware "github.com/jmillares/dental-booking-api/internal/http/middleware"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

// AppointmentsHandler serves the /api/appointments surface.
type AppointmentsHandler struct {
	svc    *appointment.Service
	logger *logging.Logger
}

func NewAppointmentsHandler(svc *appointment.Service, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{svc: svc, logger: logger}
}

// GET /api/appointments
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := httpmiddleware.UserFromContext(r.Context())
	if !ok {
		writeServiceError(w, appointment.ErrUnauthenticated)
		return
	}

	appointments, err := h.svc.List(r.Context(), user)
	if err != nil {
		h.logger.Error("list appointments failed", "error", err, "user", user.Email)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

// POST /api/appointments
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := httpmiddleware.UserFromContext(r.Context())
	if !ok {
		writeServiceError(w, appointment.ErrUnauthenticated)
		return
	}

	var req appointment.Appointment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error(), "")
		return
	}

	created, err := h.svc.Create(r.Context(), user, req)
	if err != nil {
		h.logger.Error("create appointment failed", "error", err, "user", user.Email)
		writeServiceError(w, err)
		return
	}

	message := "Appointment request sent for admin approval"
	if created.Status == appointment.StatusConfirmed {
		message = "Appointment confirmed and added to calendar"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     message,
		"appointment": created,
	})
}

// PUT /api/appointments/{id}/status
func (h *AppointmentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := httpmiddleware.UserFromContext(r.Context())
	if !ok {
		writeServiceError(w, appointment.ErrUnauthenticated)
		return
	}

	id := chi.URLParam(r, "id")
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error(), "")
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), user, id, body.Status)
	if err != nil {
		h.logger.Error("update appointment status failed", "error", err, "id", id, "user", user.Email)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Appointment " + body.Status + " successfully",
		"appointment": updated,
	})
}

// DELETE /api/appointments/{id}
func (h *AppointmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := httpmiddleware.UserFromContext(r.Context())
	if !ok {
		writeServiceError(w, appointment.ErrUnauthenticated)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), user, id); err != nil {
		h.logger.Error("delete appointment failed", "error", err, "id", id, "user", user.Email)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Appointment deleted successfully",
	})
}

// GET /api/appointments/slots/{date}
func (h *AppointmentsHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if _, ok := httpmiddleware.UserFromContext(r.Context()); !ok {
		writeServiceError(w, appointment.ErrUnauthenticated)
		return
	}

	date := chi.URLParam(r, "date")
	writeJSON(w, http.StatusOK, h.svc.Slots(r.Context(), date))
}
