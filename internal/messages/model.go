package messages

import (
	"strings"
	"time"
)

// Type classifies the message origin.
type Type string

const (
	TypePatient  Type = "patient"
	TypeSystem   Type = "system"
	TypeReminder Type = "reminder"
)

// Message is one inbox entry for a doctor. Replies are ordinary rows that
// point back at the message they answer.
type Message struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	Type       Type      `json:"type"`
	ToDoctorID string    `json:"to_doctor_id,omitempty"`
	ReplyTo    *string   `json:"reply_to,omitempty"`
	CreatedAt  time.Time `json:"date"`
}

// SendRequest is the portal payload for a patient writing to a doctor.
type SendRequest struct {
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	ToDoctorID string `json:"to_doctor_id"`
	From       string `json:"-"`
}

// Validate validates the portal send payload.
func (r *SendRequest) Validate() error {
	if strings.TrimSpace(r.Subject) == "" {
		return ErrMissingSubject
	}
	if strings.TrimSpace(r.Content) == "" {
		return ErrMissingContent
	}
	return nil
}

// ReplyRequest carries the doctor's reply body.
type ReplyRequest struct {
	Content string `json:"content"`
}

// Validate validates the reply payload.
func (r *ReplyRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return ErrMissingContent
	}
	return nil
}

// replySubject prefixes the original subject once, the way mail clients do.
func replySubject(original string) string {
	if strings.HasPrefix(original, "Re: ") {
		return original
	}
	return "Re: " + original
}
