// Package legacy maps exported documents from the previous system onto the
// canonical appointment model. Field names drifted across export versions,
// so every known variant is accepted.
package legacy

import (
	"encoding/json"
	"fmt"

	"github.com/medconnect/clinic-platform/internal/appointments"
)

// Document is one raw exported appointment. Later export versions renamed
// several fields; both spellings decode.
type Document struct {
	ID              string `json:"id"`
	PatientName     string `json:"patientName"`
	Name            string `json:"name"`
	UserID          string `json:"userId"`
	PatientID       string `json:"patientId"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Duration        int    `json:"duration"`
	DurationMinutes int    `json:"durationMinutes"`
	Specialty       string `json:"specialty"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
	Status          string `json:"status"`
	Type            string `json:"type"`
	AppointmentType string `json:"appointmentType"`
	DoctorID        string `json:"doctorId"`
}

// Normalize maps a legacy document to a canonical appointment. Missing status
// defaults to pending; unknown visit types collapse to consultation.
func Normalize(doc Document) *appointments.Appointment {
	apt := &appointments.Appointment{
		ID:              doc.ID,
		PatientID:       firstNonEmpty(doc.PatientID, doc.UserID),
		PatientName:     firstNonEmpty(doc.PatientName, doc.Name),
		Email:           doc.Email,
		Phone:           doc.Phone,
		Date:            doc.Date,
		Time:            doc.Time,
		DurationMinutes: firstPositive(doc.DurationMinutes, doc.Duration),
		Specialty:       doc.Specialty,
		Reason:          doc.Reason,
		Notes:           doc.Notes,
		DoctorID:        doc.DoctorID,
	}

	switch appointments.Status(doc.Status) {
	case appointments.StatusPending, appointments.StatusConfirmed, appointments.StatusCancelled:
		apt.Status = appointments.Status(doc.Status)
	default:
		apt.Status = appointments.StatusPending
	}

	typ := firstNonEmpty(doc.Type, doc.AppointmentType)
	switch appointments.Type(typ) {
	case appointments.TypeConsultation, appointments.TypeFollowup, appointments.TypeCheckup, appointments.TypeEmergency:
		apt.Type = appointments.Type(typ)
	default:
		apt.Type = appointments.TypeConsultation
	}

	return apt
}

// Decode parses a whole export file: a JSON array of legacy documents.
func Decode(data []byte) ([]*appointments.Appointment, error) {
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("legacy: decode export: %w", err)
	}
	out := make([]*appointments.Appointment, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Normalize(doc))
	}
	return out, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstPositive(a, b int) int {
	if a > 0 {
		return a
	}
	if b > 0 {
		return b
	}
	return 0
}
