package appointments

import (
	"strings"
	"time"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Type classifies the visit.
type Type string

const (
	TypeConsultation Type = "consultation"
	TypeFollowup     Type = "followup"
	TypeCheckup      Type = "checkup"
	TypeEmergency    Type = "emergency"
)

// Appointment is the canonical appointment document. Patient contact fields
// are denormalized at creation time so the schedule reads without joins.
type Appointment struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	PatientName     string    `json:"patient_name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Date            string    `json:"date"` // YYYY-MM-DD
	Time            string    `json:"time"` // HH:MM
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Specialty       string    `json:"specialty,omitempty"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes,omitempty"`
	Status          Status    `json:"status"`
	Type            Type      `json:"type"`
	DoctorID        string    `json:"doctor_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateRequest is the doctor-facing creation payload. The patient is
// referenced by id; name and contact are resolved from the patient record.
type CreateRequest struct {
	PatientID       string `json:"patient_id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	Specialty       string `json:"specialty"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
	Type            Type   `json:"type"`
	DoctorID        string `json:"-"`
}

// Validate validates the doctor-facing creation payload.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	return validateCommon(r.Date, r.Time, r.Reason, &r.Type)
}

// PortalRequest is the patient-facing request payload. The patient supplies
// their own contact details; the caller identity scopes the record.
type PortalRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Specialty string `json:"specialty"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
	Type      Type   `json:"type"`
	DoctorID  string `json:"doctor_id"`
	UserID    string `json:"-"`
}

// Validate validates the portal request payload.
func (r *PortalRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingPatient
	}
	return validateCommon(r.Date, r.Time, r.Reason, &r.Type)
}

func validateCommon(date, timeOfDay, reason string, typ *Type) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return ErrInvalidTime
	}
	if strings.TrimSpace(reason) == "" {
		return ErrMissingReason
	}
	switch *typ {
	case "":
		*typ = TypeConsultation
	case TypeConsultation, TypeFollowup, TypeCheckup, TypeEmergency:
	default:
		return ErrInvalidType
	}
	return nil
}

// AcceptResult reports the outcome of accepting a pending appointment.
type AcceptResult struct {
	PatientID  string `json:"patient_id"`
	Repointed  int    `json:"repointed_appointments"`
	AcceptedID string `json:"accepted_appointment_id"`
}
