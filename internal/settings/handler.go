package settings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medconnect/clinic-platform/internal/principal"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for doctor settings
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new settings handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /settings requests. A doctor without a saved document gets
// the defaults so the settings page always renders.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	s, err := h.repo.Get(r.Context(), p.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusOK, Defaults(p.UserID))
			return
		}
		h.logger.Error("failed to load settings", "error", err, "doctor_id", p.UserID)
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Save handles PUT /settings requests. The whole document is replaced.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	p, ok := principal.FromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var s DoctorSettings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	s.DoctorID = p.UserID
	if err := s.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Save(r.Context(), &s); err != nil {
		h.logger.Error("failed to save settings", "error", err, "doctor_id", p.UserID)
		http.Error(w, "failed to save settings", http.StatusInternalServerError)
		return
	}
	h.logger.Info("settings saved", "doctor_id", p.UserID)
	writeJSON(w, http.StatusOK, &s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
