package settings

import "strings"

// WorkingHours is the doctor's weekly availability window.
type WorkingHours struct {
	Start string   `json:"start"` // HH:MM
	End   string   `json:"end"`   // HH:MM
	Days  []string `json:"days"`
}

// Notifications holds the doctor's notification toggles.
type Notifications struct {
	Email     bool `json:"email"`
	SMS       bool `json:"sms"`
	Reminders bool `json:"reminders"`
}

// DoctorSettings is the doctor's whole profile and preferences document.
// It is saved and cached as one unit.
type DoctorSettings struct {
	DoctorID                   string        `json:"doctor_id"`
	Name                       string        `json:"name"`
	Specialty                  string        `json:"specialty"`
	License                    string        `json:"license"`
	Phone                      string        `json:"phone,omitempty"`
	Email                      string        `json:"email"`
	WorkingHours               WorkingHours  `json:"working_hours"`
	AppointmentDurationMinutes int           `json:"appointment_duration_minutes"`
	Notifications              Notifications `json:"notifications"`
}

// Validate checks the document before saving.
func (s *DoctorSettings) Validate() error {
	if strings.TrimSpace(s.DoctorID) == "" {
		return ErrMissingDoctor
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrMissingName
	}
	if s.AppointmentDurationMinutes < 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Defaults returns the settings document a new doctor starts from.
func Defaults(doctorID string) *DoctorSettings {
	return &DoctorSettings{
		DoctorID: doctorID,
		WorkingHours: WorkingHours{
			Start: "09:00",
			End:   "17:00",
			Days:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		},
		AppointmentDurationMinutes: 30,
		Notifications:              Notifications{Email: true, Reminders: true},
	}
}
