package messages

import "errors"

var (
	// ErrNotFound indicates the message does not exist.
	ErrNotFound = errors.New("message not found")

	// ErrMissingSubject indicates an empty subject.
	ErrMissingSubject = errors.New("message subject is required")

	// ErrMissingContent indicates an empty body.
	ErrMissingContent = errors.New("message content is required")
)
