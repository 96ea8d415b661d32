package appointments

import "errors"

var (
	// ErrNotFound is returned when an appointment does not exist
	ErrNotFound = errors.New("appointment not found")

	// ErrMissingPatient is returned when no patient reference is supplied
	ErrMissingPatient = errors.New("patient reference is required")

	// ErrMissingName is returned when a portal request lacks the patient name
	ErrMissingName = errors.New("name is required")

	// ErrMissingReason is returned when the visit reason is empty
	ErrMissingReason = errors.New("reason is required")

	// ErrInvalidDate is returned when the date is not YYYY-MM-DD
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrInvalidTime is returned when the time is not HH:MM
	ErrInvalidTime = errors.New("time must be HH:MM")

	// ErrInvalidType is returned for an unknown appointment type
	ErrInvalidType = errors.New("unknown appointment type")

	// ErrInvalidTransition is returned when a lifecycle transition is not allowed,
	// e.g. confirming a cancelled appointment
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotPending is returned when acceptance is attempted on a non-pending appointment
	ErrNotPending = errors.New("only pending appointments can be accepted")
)
