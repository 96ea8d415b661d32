package patients

import (
	"strings"
	"time"
)

// Patient is the full clinical profile. Notes and Files are append-only;
// Files holds names only, never content.
type Patient struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Age              int       `json:"age,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Email            string    `json:"email,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	BloodType        string    `json:"blood_type,omitempty"`
	Allergies        []string  `json:"allergies"`
	MedicalHistory   []string  `json:"medical_history"`
	Notes            []string  `json:"notes"`
	Files            []string  `json:"files"`
	LastVisit        string    `json:"last_visit,omitempty"` // YYYY-MM-DD
	CreatedAt        time.Time `json:"created_at"`

	// Synthesized marks a profile reconstructed from appointment history
	// because no patient row exists yet.
	Synthesized bool `json:"synthesized,omitempty"`
}

// CreateRequest is the payload for registering a patient.
type CreateRequest struct {
	Name             string   `json:"name"`
	Age              int      `json:"age"`
	Phone            string   `json:"phone"`
	Email            string   `json:"email"`
	Address          string   `json:"address"`
	EmergencyContact string   `json:"emergency_contact"`
	BloodType        string   `json:"blood_type"`
	Allergies        []string `json:"allergies"`
	MedicalHistory   []string `json:"medical_history"`
}

// Validate validates the creation payload.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if r.Age < 0 {
		return ErrInvalidAge
	}
	return nil
}

// DirectoryEntry is one row of the confirmed-appointments directory
// projection.
type DirectoryEntry struct {
	PatientID string `json:"patient_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	LastVisit string `json:"last_visit"`
	Visits    int    `json:"visits"`
}
