package auth

import (
	"net/mail"
	"strings"
	"time"
)

// User is a credential record. The password is only ever stored as a bcrypt
// hash.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the registration payload.
func (r *SignUpRequest) Validate() error {
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// SignInRequest is the login payload. AsDoctor requests the doctor role,
// which is only granted when a doctor profile exists for the account.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	AsDoctor bool   `json:"as_doctor"`
}

// ChangePasswordRequest carries a password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate validates the rotation payload.
func (r *ChangePasswordRequest) Validate() error {
	if len(r.NewPassword) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// TokenResponse is returned on successful sign-in.
type TokenResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
