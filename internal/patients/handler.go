package patients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medconnect/clinic-platform/pkg/logging"
)

// Handler handles HTTP requests for patients
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new patients handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListResponse is the response for listing patients
type ListResponse struct {
	Patients []*Patient `json:"patients"`
	Count    int        `json:"count"`
}

// DirectoryResponse is the response for the directory projection
type DirectoryResponse struct {
	Entries []*DirectoryEntry `json:"entries"`
	Count   int               `json:"count"`
}

// List handles GET /patients?limit=&offset= requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	list, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list patients", "error", err)
		http.Error(w, "failed to list patients", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Patients: list, Count: len(list)})
}

// Create handles POST /patients requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p := &Patient{
		Name:             req.Name,
		Age:              req.Age,
		Phone:            req.Phone,
		Email:            req.Email,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		BloodType:        req.BloodType,
		Allergies:        req.Allergies,
		MedicalHistory:   req.MedicalHistory,
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		h.logger.Error("failed to create patient", "error", err)
		http.Error(w, "failed to create patient", http.StatusInternalServerError)
		return
	}
	h.logger.Info("patient created", "id", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, p)
}

// Get handles GET /patients/{id} requests. Profiles for unregistered
// requesters are synthesized from appointment history.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type appendRequest struct {
	Note string `json:"note"`
	File string `json:"file"`
}

// AppendNote handles POST /patients/{id}/notes requests.
func (h *Handler) AppendNote(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Note == "" {
		http.Error(w, ErrEmptyNote.Error(), http.StatusBadRequest)
		return
	}
	p, err := h.repo.AppendNote(r.Context(), chi.URLParam(r, "id"), req.Note)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AppendFile handles POST /patients/{id}/files requests. Only the name is
// recorded; file content lives elsewhere.
func (h *Handler) AppendFile(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.File == "" {
		http.Error(w, ErrEmptyFileName.Error(), http.StatusBadRequest)
		return
	}
	p, err := h.repo.AppendFile(r.Context(), chi.URLParam(r, "id"), req.File)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /patients/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Directory handles GET /patients/directory?limit=&offset= requests.
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	entries, err := h.repo.Directory(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to build patient directory", "error", err)
		http.Error(w, "failed to build directory", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, DirectoryResponse{Entries: entries, Count: len(entries)})
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error("patient operation failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
