package appointments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/medconnect/clinic-platform/internal/notify"
	"github.com/medconnect/clinic-platform/internal/principal"
)

type fakeLookup struct {
	contacts map[string][3]string
}

func (f *fakeLookup) Contact(_ context.Context, id string) (string, string, string, error) {
	c, ok := f.contacts[id]
	if !ok {
		return "", "", "", errors.New("no such patient")
	}
	return c[0], c[1], c[2], nil
}

func newTestHandler(repo Repository) (*Handler, *notify.StubEmailSender) {
	sender := &notify.StubEmailSender{}
	lookup := &fakeLookup{contacts: map[string][3]string{
		"u-1": {"Ana Gómez", "ana@example.com", "555-0101"},
	}}
	return NewHandler(repo, lookup, sender, nil, nil), sender
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/appointments", h.List)
	r.Post("/appointments", h.Create)
	r.Get("/appointments/{id}", h.Get)
	r.Delete("/appointments/{id}", h.Delete)
	r.Post("/appointments/{id}/confirm", h.Confirm)
	r.Post("/appointments/{id}/cancel", h.Cancel)
	r.Post("/appointments/{id}/accept", h.Accept)
	r.Post("/appointments/{id}/reminder", h.SendReminder)
	r.Post("/portal/appointments", h.PortalCreate)
	r.Get("/portal/appointments", h.PortalList)
	return r
}

func asDoctor(req *http.Request) *http.Request {
	ctx := principal.WithPrincipal(req.Context(), principal.Principal{
		UserID: "doc-1", Email: "doctor@clinic.example", Role: principal.RoleDoctor,
	})
	return req.WithContext(ctx)
}

func asPatient(req *http.Request) *http.Request {
	ctx := principal.WithPrincipal(req.Context(), principal.Principal{
		UserID: "u-1", Email: "ana@example.com", Role: principal.RolePatient,
	})
	return req.WithContext(ctx)
}

func doJSON(t *testing.T, router http.Handler, req *http.Request, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
		}
	}
	return rec
}

func TestCreateResolvesContactAndStartsPending(t *testing.T) {
	repo := NewInMemoryRepository()
	h, _ := newTestHandler(repo)
	router := newRouter(h)

	body, _ := json.Marshal(map[string]any{
		"patient_id": "u-1",
		"date":      "2025-03-10",
		"time":      "09:00",
		"reason":    "Chequeo",
		"status":    "confirmed", // ignored
	})
	req := asDoctor(httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body)))
	var apt Appointment
	rec := doJSON(t, router, req, &apt)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if apt.Status != StatusPending {
		t.Fatalf("expected pending, got %s", apt.Status)
	}
	if apt.PatientName != "Ana Gómez" || apt.Email != "ana@example.com" || apt.Phone != "555-0101" {
		t.Fatalf("expected contact fields from patient record, got %+v", apt)
	}
	if apt.DoctorID != "doc-1" {
		t.Fatalf("expected doctor id from principal, got %q", apt.DoctorID)
	}
	if apt.Type != TypeConsultation {
		t.Fatalf("expected default consultation type, got %s", apt.Type)
	}
}

func TestCreateRejectsUnknownPatient(t *testing.T) {
	h, _ := newTestHandler(NewInMemoryRepository())
	router := newRouter(h)

	body, _ := json.Marshal(map[string]any{
		"patient_id": "nobody", "date": "2025-03-10", "time": "09:00", "reason": "x",
	})
	req := asDoctor(httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body)))
	if rec := doJSON(t, router, req, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListFiltersBySearchAndStatus(t *testing.T) {
	repo := NewInMemoryRepository()
	h, _ := newTestHandler(repo)
	router := newRouter(h)
	ana := newPending(t, repo, "Ana Gómez", "u-1")
	newPending(t, repo, "Carlos Ruiz", "u-2")

	// The new request shows up in the pending view exactly once.
	var resp ListResponse
	req := asDoctor(httptest.NewRequest(http.MethodGet, "/appointments?q=ana&status=pending", nil))
	doJSON(t, router, req, &resp)
	if resp.Count != 1 || resp.Appointments[0].ID != ana.ID {
		t.Fatalf("expected Ana's pending appointment, got %+v", resp)
	}

	// Confirm it; it leaves the pending view and appears under confirmed.
	creq := asDoctor(httptest.NewRequest(http.MethodPost, "/appointments/"+ana.ID+"/confirm", nil))
	if rec := doJSON(t, router, creq, nil); rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", rec.Code)
	}

	req = asDoctor(httptest.NewRequest(http.MethodGet, "/appointments?q=ana&status=pending", nil))
	doJSON(t, router, req, &resp)
	if resp.Count != 0 {
		t.Fatalf("expected empty pending view, got %d", resp.Count)
	}
	req = asDoctor(httptest.NewRequest(http.MethodGet, "/appointments?status=confirmed", nil))
	doJSON(t, router, req, &resp)
	if resp.Count != 1 || resp.Appointments[0].ID != ana.ID {
		t.Fatalf("expected Ana under confirmed, got %+v", resp)
	}
}

func TestConfirmCancelledReturnsConflict(t *testing.T) {
	repo := NewInMemoryRepository()
	h, _ := newTestHandler(repo)
	router := newRouter(h)
	apt := newPending(t, repo, "Ana Gómez", "u-1")
	if _, err := repo.Cancel(context.Background(), apt.ID); err != nil {
		t.Fatal(err)
	}

	req := asDoctor(httptest.NewRequest(http.MethodPost, "/appointments/"+apt.ID+"/confirm", nil))
	if rec := doJSON(t, router, req, nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAcceptEndpoint(t *testing.T) {
	repo := NewInMemoryRepository()
	h, _ := newTestHandler(repo)
	router := newRouter(h)
	apt := newPending(t, repo, "Ana Gómez", "u-1")

	var result AcceptResult
	req := asDoctor(httptest.NewRequest(http.MethodPost, "/appointments/"+apt.ID+"/accept", nil))
	rec := doJSON(t, router, req, &result)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if result.PatientID == "" || result.AcceptedID != apt.ID {
		t.Fatalf("unexpected accept result: %+v", result)
	}

	greq := asDoctor(httptest.NewRequest(http.MethodGet, "/appointments/"+apt.ID, nil))
	if rec := doJSON(t, router, greq, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after accept, got %d", rec.Code)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	repo := NewInMemoryRepository()
	h, _ := newTestHandler(repo)
	router := newRouter(h)
	apt := newPending(t, repo, "Ana Gómez", "u-1")

	req := asDoctor(httptest.NewRequest(http.MethodDelete, "/appointments/"+apt.ID, nil))
	if rec := doJSON(t, router, req, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	req = asDoctor(httptest.NewRequest(http.MethodDelete, "/appointments/"+apt.ID, nil))
	if rec := doJSON(t, router, req, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestSendReminder(t *testing.T) {
	repo := NewInMemoryRepository()
	h, sender := newTestHandler(repo)
	router := newRouter(h)
	apt := newPending(t, repo, "Ana Gómez", "u-1")

	req := asDoctor(httptest.NewRequest(http.MethodPost, "/appointments/"+apt.ID+"/reminder", nil))
	if rec := doJSON(t, router, req, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(sender.Sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.Sent))
	}
	if sender.Sent[0].To != "p@example.com" {
		t.Fatalf("unexpected recipient %q", sender.Sent[0].To)
	}
}

func TestSendReminderWithoutEmail(t *testing.T) {
	repo := NewInMemoryRepository()
	h, sender := newTestHandler(repo)
	router := newRouter(h)
	apt := &Appointment{PatientName: "Walk In", Date: "2025-03-10", Time: "09:00", Reason: "x"}
	if err := repo.Create(context.Background(), apt); err != nil {
		t.Fatal(err)
	}

	req := asDoctor(httptest.NewRequest(http.MethodPost, "/appointments/"+apt.ID+"/reminder", nil))
	if rec := doJSON(t, router, req, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(sender.Sent) != 0 {
		t.Fatal("no email should be sent")
	}
}

func TestPortalCreateAndListScopedToPrincipal(t *testing.T) {
	repo := NewInMemoryRepository()
	h, _ := newTestHandler(repo)
	router := newRouter(h)
	newPending(t, repo, "Carlos Ruiz", "u-2")

	body, _ := json.Marshal(map[string]any{
		"name": "Ana Gómez", "date": "2025-04-01", "time": "11:30", "reason": "Dolor de cabeza",
	})
	var apt Appointment
	req := asPatient(httptest.NewRequest(http.MethodPost, "/portal/appointments", bytes.NewReader(body)))
	rec := doJSON(t, router, req, &apt)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if apt.PatientID != "u-1" {
		t.Fatalf("expected principal scope, got %q", apt.PatientID)
	}
	if apt.Email != "ana@example.com" {
		t.Fatalf("expected email defaulted from principal, got %q", apt.Email)
	}

	var resp ListResponse
	lreq := asPatient(httptest.NewRequest(http.MethodGet, "/portal/appointments", nil))
	doJSON(t, router, lreq, &resp)
	if resp.Count != 1 || resp.Appointments[0].ID != apt.ID {
		t.Fatalf("expected only the caller's appointments, got %+v", resp)
	}
}

func TestPortalCreateRequiresPrincipal(t *testing.T) {
	h, _ := newTestHandler(NewInMemoryRepository())
	router := newRouter(h)

	body, _ := json.Marshal(map[string]any{"name": "Ana", "date": "2025-04-01", "time": "11:30", "reason": "x"})
	req := httptest.NewRequest(http.MethodPost, "/portal/appointments", bytes.NewReader(body))
	if rec := doJSON(t, router, req, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
