package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"recaudo/internal/core/apperror"
	"recaudo/internal/core/id"
	"recaudo/pkg/logger"
)

const minPasswordLength = 8

// Service handles registration, login and user lookups.
type Service struct {
	users UserRepository
	jwt   *JWTService

	now func() time.Time
}

// NewService creates the auth service.
func NewService(users UserRepository, jwt *JWTService) *Service {
	return &Service{users: users, jwt: jwt, now: time.Now}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < minPasswordLength {
		return nil, apperror.NewValidation("password too short").
			WithDetail("field", "password").
			WithDetail("min_length", minPasswordLength)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("user", "email", email)
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	role := req.Role
	if role == "" {
		role = RoleOperator
	}
	user := NewUser(email, string(hash), req.Name, role)
	if err := user.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Same error as a wrong password, no account enumeration.
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, err
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	accessToken, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, apperror.NewInternal(err)
	}

	user.RecordLogin(s.now())
	if err := s.users.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to stamp last login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &Token{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
	}, user, nil
}

// GetByID returns a user by id.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// Providers returns the active provider users, for the owner filter
// dropdowns.
func (s *Service) Providers(ctx context.Context) ([]User, error) {
	return s.users.ListByRole(ctx, RoleProvider)
}
