// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the stores
//
// Handlers only know about HTTP (status codes, headers, JSON). Services
// only know about business rules (validation, credentials, ownership).
// Neither knows whether records live in a JSON document or a SQLite file.
//
// AuthService owns registration and login:
//
//	AuthHandler (HTTP) → AuthService → UserRepository
//	                   ↘ PasswordService (bcrypt)
//	                   ↘ TokenService (JWT)
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nmelnikov5/task-manager/internal/apperror"
	"github.com/nmelnikov5/task-manager/internal/auth"
	"github.com/nmelnikov5/task-manager/internal/model"
	"github.com/nmelnikov5/task-manager/internal/repository"
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users     repository.UserRepository → read/write account records
//   - passwords *auth.PasswordService     → bcrypt hashing/verification
//   - tokens    *auth.TokenService        → issue JWTs on login
//   - logger    *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Register creates a new account.
//
// Rules, in order:
//  1. Both fields must be present — missing either is a validation error.
//  2. The username must not already exist (exact, case-sensitive match) —
//     the repository enforces this atomically with the insert and returns
//     a conflict error.
//  3. Only the bcrypt hash of the password is ever stored.
//
// Returns the created user so callers can log the assigned id. No
// password material — not even the hash's presence — goes in the HTTP
// response; the handler replies with a plain message.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "username and password are required")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	// CreateUser assigns the id and persists; a duplicate username comes
	// back as apperror.ErrConflict and propagates as-is.
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies credentials and issues a session token.
//
// WHY ONE ERROR FOR "NO SUCH USER" AND "WRONG PASSWORD"?
// Distinct errors would let an attacker probe which usernames exist by
// watching which message comes back. Both cases collapse into the same
// invalid-credentials error (and the same 400 on the wire).
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperror.ValidationFailed("credentials", "username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		// Not-found deliberately becomes invalid-credentials here.
		return "", apperror.InvalidCredentials()
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", slog.String("username", username))
		return "", apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.Int("userID", user.ID),
		slog.String("username", user.Username),
	)

	return token, nil
}
