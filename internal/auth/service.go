package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/medconnect/clinic-platform/internal/http/middleware"
	"github.com/medconnect/clinic-platform/internal/principal"
	"github.com/medconnect/clinic-platform/pkg/logging"
)

// ProfileChecker reports whether an account has a doctor profile. The
// settings repository satisfies it.
type ProfileChecker interface {
	Exists(ctx context.Context, doctorID string) (bool, error)
}

// Config tunes the service.
type Config struct {
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	AllowSignup bool
}

// Service implements sign-up, sign-in and password rotation.
type Service struct {
	users    Repository
	profiles ProfileChecker
	cfg      Config
	logger   *logging.Logger
}

// NewService creates the auth service.
func NewService(users Repository, profiles ProfileChecker, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, profiles: profiles, cfg: cfg, logger: logger}
}

// SignUp registers a new account.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*User, error) {
	if !s.cfg.AllowSignup {
		return nil, ErrSignupDisabled
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	u := &User{Email: req.Email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// SignIn verifies credentials and issues a signed token. The doctor role is
// granted only when a doctor profile exists; otherwise the sign-in fails and
// no token is issued.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*TokenResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	role := principal.RolePatient
	if req.AsDoctor {
		ok, err := s.profiles.Exists(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("auth: doctor profile check: %w", err)
		}
		if !ok {
			s.logger.Info("doctor sign-in rejected, no profile", "user_id", u.ID)
			return nil, ErrNotDoctor
		}
		role = principal.RoleDoctor
	}

	expires := time.Now().Add(s.cfg.TokenTTL)
	claims := middleware.Claims{
		Email: u.Email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}

	s.logger.Info("user signed in", "user_id", u.ID, "role", role)
	return &TokenResponse{Token: token, Role: string(role), UserID: u.ID, ExpiresAt: expires}, nil
}

// ChangePassword rotates the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", userID)
	return nil
}
