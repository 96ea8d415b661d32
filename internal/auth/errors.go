package auth

import "errors"

var (
	// ErrUserNotFound indicates no account exists for the email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidEmail indicates an unparseable email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword indicates a password below the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidCredentials indicates the email/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotDoctor indicates a doctor sign-in by an account without a doctor
	// profile. No token is issued.
	ErrNotDoctor = errors.New("account has no doctor profile")

	// ErrSignupDisabled indicates registration is turned off.
	ErrSignupDisabled = errors.New("sign-up is disabled")
)
