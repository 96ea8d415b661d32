package appointments

import "strings"

// Filter narrows a loaded appointment list by free-text search and status.
// It is a pure function: search matches case-insensitively on patient name
// and reason, statusFilter "" or "all" passes everything.
func Filter(list []*Appointment, searchTerm, statusFilter string) []*Appointment {
	search := strings.ToLower(strings.TrimSpace(searchTerm))
	status := strings.ToLower(strings.TrimSpace(statusFilter))

	out := make([]*Appointment, 0, len(list))
	for _, apt := range list {
		if status != "" && status != "all" && string(apt.Status) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(apt.PatientName), search) &&
			!strings.Contains(strings.ToLower(apt.Reason), search) {
			continue
		}
		out = append(out, apt)
	}
	return out
}
