package settings

import "errors"

var (
	// ErrNotFound indicates no settings document exists for the doctor.
	ErrNotFound = errors.New("doctor settings not found")

	// ErrMissingDoctor indicates an empty doctor id.
	ErrMissingDoctor = errors.New("doctor id is required")

	// ErrMissingName indicates an empty doctor name.
	ErrMissingName = errors.New("doctor name is required")

	// ErrInvalidDuration indicates a negative default appointment duration.
	ErrInvalidDuration = errors.New("appointment duration must not be negative")
)
