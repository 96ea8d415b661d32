// Package events provides the transactional change feed. Every mutating
// repository records a change event in the outbox inside the same transaction
// as the write, and the deliverer fans committed events out to subscribers.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Op classifies what happened to a document.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Collections known to the change feed.
const (
	CollectionAppointments = "appointments"
	CollectionPatients     = "patients"
	CollectionMessages     = "messages"
	CollectionSettings     = "doctor_settings"
)

// ChangeEvent is one committed document change.
type ChangeEvent struct {
	ID         uuid.UUID       `json:"id"`
	Collection string          `json:"collection"`
	Op         Op              `json:"op"`
	DocumentID string          `json:"document_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
