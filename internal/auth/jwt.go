// Package auth provides JWT token generation and validation for the task API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. POST /api/register → username + password stored (password bcrypt-hashed)
// 2. POST /api/login → credentials verified, server issues a JWT
// 3. Client sends "Authorization: Bearer <token>" on every protected call
// 4. Middleware validates the JWT and sets the caller's identity in the
//    request context — handlers never see the raw token
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store session
// data. All the information needed (user id, username, expiry) is inside the
// signed token. The signature ensures nobody can tamper with it without the
// secret key.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims (data) → {"sub":"1","username":"alice","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The payload is SIGNED, NOT ENCRYPTED — anyone can base64-decode it.
// That's fine for the identity needed to scope todo items, and exactly why
// nothing secret beyond that identity may ever go into the claims.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// TokenTTL is how long an issued session token stays valid.
// After an hour the client must log in again.
const TokenTTL = time.Hour

// Identity is the authenticated caller extracted from a validated token.
// It is the SOLE source of the user id used to scope todo items — the
// request body is never trusted for ownership decisions.
type Identity struct {
	UserID   int
	Username string
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations — keep it safe, rotate it
// periodically in production.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims which includes
// standard fields like Issuer, Subject, ExpiresAt, IssuedAt.
//
// We use "sub" (Subject) to store the user id as a decimal string — the
// standard JWT claim for identifying who the token belongs to — and add a
// private "username" claim so handlers can log who acted without a user
// lookup on every request.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate creates and signs a new JWT session token for the given user.
//
// Token lifetime: one hour (TokenTTL).
//
// Signing algorithm: HS256 (HMAC-SHA256)
// - Symmetric: same key for signing and verifying
// - Fast and simple — good for single-server deployments
// - Alternative RS256 for asymmetric (multi-server key rotation)
//
// Each token carries a unique xid in the "jti" claim. Nothing checks it on
// this server today, but it gives log correlation and a hook for a future
// revocation list without changing the token format.
func (s *TokenService) Generate(userID int, username string) (string, error) {
	return s.GenerateWithDuration(userID, username, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID int, username string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ID:        xid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "task-manager",
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string.
// Returns the embedded Identity if the token is valid.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches "task-manager" (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// ALGORITHM CONFUSION ATTACK:
// Without checking the algorithm, an attacker could send a token signed with
// "none" and the library might accept it. Passing jwt.WithValidMethods prevents this.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			// Reject tokens that aren't signed with HS256
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("task-manager"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Translate jwt library errors into cleaner messages
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.Atoi(c.Subject)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("auth: token subject is not a user id")
	}

	return Identity{UserID: userID, Username: c.Username}, nil
}
