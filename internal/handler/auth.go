package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nmelnikov5/task-manager/internal/service"
)

// AuthHandler exposes the two public (unauthenticated) endpoints:
//
//	POST /api/register → create an account
//	POST /api/login    → verify credentials, issue a session token
//
// The handler's only jobs are parsing the request body and translating
// service results to HTTP — all credential rules live in AuthService.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. Dependencies are injected;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// credentialsRequest is the body of both register and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/register
// REQUEST BODY: {"username": "alice", "password": "secret1"}
// RESPONSE: 201 {"message": "user registered successfully"}
//
// The response deliberately contains NO user data — no id, no echo of the
// username, and certainly nothing derived from the password.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("register: invalid JSON body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
}

// HandleLogin verifies credentials and returns a session token.
//
// HTTP: POST /api/login
// REQUEST BODY: {"username": "alice", "password": "secret1"}
// RESPONSE: 200 {"token": "<jwt>"}
//
// The token goes in the body, not a cookie — clients store it themselves
// and send it back as "Authorization: Bearer <token>".
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("login: invalid JSON body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
