package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medconnect/clinic-platform/internal/principal"
)

func asDoctor(req *http.Request) *http.Request {
	ctx := principal.WithPrincipal(req.Context(), principal.Principal{
		UserID: "doc-1", Email: "doctor@clinic.example", Role: principal.RoleDoctor,
	})
	return req.WithContext(ctx)
}

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	rec := httptest.NewRecorder()
	h.Get(rec, asDoctor(httptest.NewRequest(http.MethodGet, "/settings", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var s DoctorSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if s.DoctorID != "doc-1" || s.WorkingHours.Start != "09:00" || s.AppointmentDurationMinutes != 30 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestSaveRoundTrips(t *testing.T) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)

	doc := Defaults("ignored")
	doc.Name = "Dr. García"
	doc.Specialty = "Cardiology"
	doc.WorkingHours.Days = []string{"monday", "wednesday"}
	body, _ := json.Marshal(doc)

	rec := httptest.NewRecorder()
	h.Save(rec, asDoctor(httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Get(rec, asDoctor(httptest.NewRequest(http.MethodGet, "/settings", nil)))
	var got DoctorSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.DoctorID != "doc-1" {
		t.Fatalf("expected doctor id from principal, got %q", got.DoctorID)
	}
	if got.Name != "Dr. García" || len(got.WorkingHours.Days) != 2 {
		t.Fatalf("unexpected document: %+v", got)
	}
}

func TestSaveRejectsInvalidDocument(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	body, _ := json.Marshal(DoctorSettings{}) // no name
	rec := httptest.NewRecorder()
	h.Save(rec, asDoctor(httptest.NewRequest(http.MethodPut, "/settings", bytes.NewReader(body))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequiresPrincipal(t *testing.T) {
	h := NewHandler(NewInMemoryRepository(), nil)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
