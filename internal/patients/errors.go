package patients

import "errors"

var (
	// ErrNotFound indicates the patient does not exist and no appointment
	// history is available to synthesize a profile from.
	ErrNotFound = errors.New("patient not found")

	// ErrMissingName indicates the name field is empty.
	ErrMissingName = errors.New("patient name is required")

	// ErrInvalidAge indicates a negative age.
	ErrInvalidAge = errors.New("patient age must not be negative")

	// ErrEmptyNote indicates an append with no content.
	ErrEmptyNote = errors.New("note content is required")

	// ErrEmptyFileName indicates an append with no file name.
	ErrEmptyFileName = errors.New("file name is required")
)
