package notify

import (
	"fmt"
	"strings"
)

// ComposeReminder builds the appointment reminder email sent from the
// doctor's appointment detail view.
func ComposeReminder(toEmail, patientName, date, timeOfDay, specialty string) EmailMessage {
	if specialty == "" {
		specialty = "General"
	}
	name := strings.TrimSpace(patientName)
	if name == "" {
		name = "Patient"
	}

	body := fmt.Sprintf(
		"Hello %s,\n\nThis is a reminder of your %s appointment on %s at %s.\n\nIf you cannot attend, please contact the clinic to reschedule.\n\nMedConnect",
		name, specialty, date, timeOfDay,
	)

	return EmailMessage{
		To:      toEmail,
		ToName:  name,
		Subject: fmt.Sprintf("Appointment reminder: %s at %s", date, timeOfDay),
		Body:    body,
	}
}
