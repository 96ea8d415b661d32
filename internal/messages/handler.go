package messages

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medconnect/clinic-platform/internal/observability/metrics"
	"github.com/medconnect/clinic-platform/internal/principal"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for messages
type Handler struct {
	repo    Repository
	metrics *metrics.ClinicMetrics
	logger  *logging.Logger
}

// NewHandler creates a new messages handler
func NewHandler(repo Repository, m *metrics.ClinicMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, metrics: m, logger: logger}
}

// ListResponse is the response for listing messages
type ListResponse struct {
	Messages []*Message `json:"messages"`
	Count    int        `json:"count"`
}

// List handles GET /messages?q=&type= requests. The inbox is scoped to the
// authenticated doctor; filtering happens after the scope query.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	all, err := h.repo.List(r.Context(), p.UserID)
	if err != nil {
		h.logger.Error("failed to list messages", "error", err)
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	filtered := Filter(all, r.URL.Query().Get("q"), r.URL.Query().Get("type"))
	writeJSON(w, http.StatusOK, ListResponse{Messages: filtered, Count: len(filtered)})
}

// fetchOwned loads the message addressed by the {id} URL parameter and
// verifies it belongs to the authenticated doctor's inbox. Messages outside
// the inbox are reported as not found so the response does not reveal that
// another doctor's message exists. On failure the response has already been
// written.
func (h *Handler) fetchOwned(w http.ResponseWriter, r *http.Request) (*Message, bool) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return nil, false
	}
	m, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return nil, false
	}
	if m.ToDoctorID != p.UserID {
		http.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return nil, false
	}
	return m, true
}

// Get handles GET /messages/{id} requests.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.fetchOwned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// MarkRead handles POST /messages/{id}/read requests.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.fetchOwned(w, r); !ok {
		return
	}
	m, err := h.repo.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.metrics.ObserveMessage("read")
	writeJSON(w, http.StatusOK, m)
}

// UnreadCount handles GET /messages/unread requests.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	count, err := h.repo.UnreadCount(r.Context(), p.UserID)
	if err != nil {
		h.logger.Error("failed to count unread messages", "error", err)
		http.Error(w, "failed to count unread messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// Reply handles POST /messages/{id}/reply requests.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := h.fetchOwned(w, r); !ok {
		return
	}
	p, _ := principal.FromContext(r.Context())

	reply, err := h.repo.Reply(r.Context(), chi.URLParam(r, "id"), p.Email, req.Content)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.metrics.ObserveMessage("replied")
	h.logger.Info("message replied", "original_id", chi.URLParam(r, "id"), "reply_id", reply.ID)
	writeJSON(w, http.StatusCreated, reply)
}

// Delete handles DELETE /messages/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.fetchOwned(w, r); !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.metrics.ObserveMessage("deleted")
	w.WriteHeader(http.StatusNoContent)
}

// PortalSend handles POST /portal/messages: a patient writes to a doctor.
func (h *Handler) PortalSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, ok := principal.FromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	req.From = p.Email
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m := &Message{
		From:       req.From,
		Subject:    req.Subject,
		Content:    req.Content,
		Type:       TypePatient,
		ToDoctorID: req.ToDoctorID,
	}
	if err := h.repo.Create(r.Context(), m); err != nil {
		h.logger.Error("failed to send message", "error", err)
		http.Error(w, "failed to send message", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveMessage("sent")
	h.logger.Info("portal message sent", "id", m.ID, "to_doctor", m.ToDoctorID)
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("message operation failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
