package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// Without helpers, every handler repeats the same boilerplate:
//   w.Header().Set("Content-Type", "application/json")
//   w.WriteHeader(statusCode)
//   json.NewEncoder(w).Encode(data)
//
// With helpers, handlers are cleaner and more consistent:
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from this API is the same flat shape:
//   {"error": "text is required"}
// That single field is the contract the existing clients parse; don't be
// tempted to enrich it with codes or nested objects.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nmelnikov5/task-manager/internal/apperror"
)

// ErrorResponse is the error body returned by all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status code must be set BEFORE writing the body. Once
// Encode calls w.Write, the headers are sent and further changes are
// silently ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone — all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// STATUS MAPPING — mostly NOT the textbook numbers, deliberately:
//   - validation            → 400
//   - conflict (dup user)   → 400 (not 409 — the original API said 400 and
//     clients branch on it)
//   - invalid credentials   → 400 (not 401 — login failures were always 400)
//   - missing token         → 401
//   - invalid/expired token → 400
//   - not found / not yours → 404
//   - anything else         → 500
//
// WHY HERE AND NOT IN THE SERVICE?
// The service layer returns domain errors (apperror.ErrNotFound etc.) and
// knows nothing about HTTP. errors.Is() walks the wrapped chain, so a
// service error like fmt.Errorf("updating todo item: %w", NotFound(...))
// still maps to 404.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	// errors.As() walks the chain and fills appErr if an *AppError is
	// anywhere in it — that's where the human-readable message lives.
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation),
			errors.Is(err, apperror.ErrConflict),
			errors.Is(err, apperror.ErrInvalidCredentials),
			errors.Is(err, apperror.ErrInvalidToken):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrMissingToken):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}

		writeJSON(w, status, ErrorResponse{Error: appErr.Message})
		return
	}

	// Unknown error — return a generic 500.
	// NEVER expose internal error details to the client: the raw message
	// might contain file paths or other internals.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
