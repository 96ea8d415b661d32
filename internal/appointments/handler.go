package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medconnect/clinic-platform/internal/notify"
	"github.com/medconnect/clinic-platform/internal/observability/metrics"
	"github.com/medconnect/clinic-platform/internal/principal"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

// PatientLookup resolves a patient reference into contact fields for
// denormalization at creation time.
type PatientLookup interface {
	Contact(ctx context.Context, id string) (name, email, phone string, err error)
}

// Handler handles HTTP requests for appointments
type Handler struct {
	repo     Repository
	patients PatientLookup
	sender   notify.EmailSender
	metrics  *metrics.ClinicMetrics
	logger   *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(repo Repository, patients PatientLookup, sender notify.EmailSender, m *metrics.ClinicMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:     repo,
		patients: patients,
		sender:   sender,
		metrics:  m,
		logger:   logger,
	}
}

// ListResponse is the response for listing appointments
type ListResponse struct {
	Appointments []*Appointment `json:"appointments"`
	Count        int            `json:"count"`
}

// List handles GET /appointments?q=&status= requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context(), ListQuery{})
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	filtered := Filter(all, r.URL.Query().Get("q"), r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, ListResponse{Appointments: filtered, Count: len(filtered)})
}

// Create handles POST /appointments: a doctor books a visit for an existing
// patient. Contact fields come from the patient record, not the request.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if p, ok := principal.FromContext(r.Context()); ok {
		req.DoctorID = p.UserID
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name, email, phone, err := h.patients.Contact(r.Context(), req.PatientID)
	if err != nil {
		h.logger.Error("patient lookup failed", "error", err, "patient_id", req.PatientID)
		http.Error(w, "patient not found", http.StatusBadRequest)
		return
	}

	apt := &Appointment{
		PatientID:       req.PatientID,
		PatientName:     name,
		Email:           email,
		Phone:           phone,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Specialty:       req.Specialty,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Type:            req.Type,
		DoctorID:        req.DoctorID,
	}
	if err := h.repo.Create(r.Context(), apt); err != nil {
		h.logger.Error("failed to create appointment", "error", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveTransition("created")
	h.logger.Info("appointment created", "id", apt.ID, "patient_id", apt.PatientID, "date", apt.Date)
	writeJSON(w, http.StatusCreated, apt)
}

// Get handles GET /appointments/{id} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	apt, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apt)
}

// Confirm handles POST /appointments/{id}/confirm requests.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	apt, err := h.repo.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.metrics.ObserveTransition("pending_to_confirmed")
	writeJSON(w, http.StatusOK, apt)
}

// Cancel handles POST /appointments/{id}/cancel requests. Cancelling twice
// succeeds with the already-cancelled appointment.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	apt, err := h.repo.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.metrics.ObserveTransition("to_cancelled")
	writeJSON(w, http.StatusOK, apt)
}

// Accept handles POST /appointments/{id}/accept requests.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	result, err := h.repo.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.metrics.ObserveTransition("accepted")
	h.logger.Info("appointment accepted", "appointment_id", result.AcceptedID, "patient_id", result.PatientID, "repointed", result.Repointed)
	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /appointments/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.metrics.ObserveTransition("deleted")
	w.WriteHeader(http.StatusNoContent)
}

// SendReminder handles POST /appointments/{id}/reminder requests.
func (h *Handler) SendReminder(w http.ResponseWriter, r *http.Request) {
	apt, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if apt.Email == "" {
		http.Error(w, "appointment has no email address", http.StatusBadRequest)
		return
	}

	msg := notify.ComposeReminder(apt.Email, apt.PatientName, apt.Date, apt.Time, apt.Specialty)
	if err := h.sender.Send(r.Context(), msg); err != nil {
		h.metrics.ObserveEmail("failed")
		h.logger.Error("reminder send failed", "error", err, "appointment_id", apt.ID)
		http.Error(w, "failed to send reminder", http.StatusBadGateway)
		return
	}
	h.metrics.ObserveEmail("sent")
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

// PortalCreate handles POST /portal/appointments: an authenticated patient
// requests a visit. The record is scoped to the requesting principal.
func (h *Handler) PortalCreate(w http.ResponseWriter, r *http.Request) {
	var req PortalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, ok := principal.FromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	req.UserID = p.UserID
	if req.Email == "" {
		req.Email = p.Email
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	apt := &Appointment{
		PatientID:   req.UserID,
		PatientName: req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Date:        req.Date,
		Time:        req.Time,
		Specialty:   req.Specialty,
		Reason:      req.Reason,
		Notes:       req.Notes,
		Type:        req.Type,
		DoctorID:    req.DoctorID,
	}
	if err := h.repo.Create(r.Context(), apt); err != nil {
		h.logger.Error("failed to create portal appointment", "error", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveTransition("created")
	h.logger.Info("portal appointment requested", "id", apt.ID, "user_id", req.UserID)
	writeJSON(w, http.StatusCreated, apt)
}

// PortalList handles GET /portal/appointments: the caller's own requests.
func (h *Handler) PortalList(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	list, err := h.repo.List(r.Context(), ListQuery{UserID: p.UserID})
	if err != nil {
		h.logger.Error("failed to list portal appointments", "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Appointments: list, Count: len(list)})
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotPending):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("appointment operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
