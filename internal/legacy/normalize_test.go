package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconnect/clinic-platform/internal/appointments"
)

func TestNormalizeOldSpelling(t *testing.T) {
	apt := Normalize(Document{
		Name:     "Ana Gómez",
		UserID:   "u-1",
		Duration: 45,
		Type:     "followup",
		Status:   "confirmed",
		Date:     "2025-03-10",
		Time:     "09:00",
	})
	assert.Equal(t, "Ana Gómez", apt.PatientName)
	assert.Equal(t, "u-1", apt.PatientID)
	assert.Equal(t, 45, apt.DurationMinutes)
	assert.Equal(t, appointments.TypeFollowup, apt.Type)
	assert.Equal(t, appointments.StatusConfirmed, apt.Status)
}

func TestNormalizePrefersNewSpelling(t *testing.T) {
	apt := Normalize(Document{
		PatientName:     "Ana Gómez",
		Name:            "ignored",
		PatientID:       "u-1",
		UserID:          "ignored",
		DurationMinutes: 30,
		Duration:        45,
		AppointmentType: "checkup",
	})
	assert.Equal(t, "Ana Gómez", apt.PatientName)
	assert.Equal(t, "u-1", apt.PatientID)
	assert.Equal(t, 30, apt.DurationMinutes)
	assert.Equal(t, appointments.TypeCheckup, apt.Type)
}

func TestNormalizeDefaults(t *testing.T) {
	apt := Normalize(Document{Name: "Ana"})
	assert.Equal(t, appointments.StatusPending, apt.Status)
	assert.Equal(t, appointments.TypeConsultation, apt.Type)

	// Unknown values collapse to the defaults too.
	apt = Normalize(Document{Name: "Ana", Status: "archived", Type: "surgery"})
	assert.Equal(t, appointments.StatusPending, apt.Status)
	assert.Equal(t, appointments.TypeConsultation, apt.Type)
}

func TestDecodeExport(t *testing.T) {
	data := []byte(`[
		{"name": "Ana Gómez", "userId": "u-1", "date": "2025-03-10", "time": "09:00", "reason": "Chequeo"},
		{"patientName": "Carlos Ruiz", "patientId": "u-2", "status": "cancelled", "appointmentType": "emergency"}
	]`)
	list, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "Ana Gómez", list[0].PatientName)
	assert.Equal(t, appointments.StatusPending, list[0].Status)
	assert.Equal(t, appointments.StatusCancelled, list[1].Status)
	assert.Equal(t, appointments.TypeEmergency, list[1].Type)

	_, err = Decode([]byte(`{"not": "an array"}`))
	require.Error(t, err)
}
