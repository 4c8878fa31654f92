package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chmw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tomvanloon/signnet/internal/domain"
	"github.com/tomvanloon/signnet/internal/middleware"
)

type ErrorResponse struct {
	BaseResponse
	Error string `json:"error"`
}

type BaseResponse struct {
	Ok bool `json:"ok"`
}

// respondWithError sends an error response with a message
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	// Sets content type header
	w.Header().Set("Content-Type", "application/json")

	// Sets the HTTP status code
	w.WriteHeader(code)

	// Encodes the response
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// If encoding fails, logs the error and sends a plain text response
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// respondWithDomainError maps domain error categories onto HTTP statuses.
// Specific errors wrap a category sentinel, so errors.Is on the category
// is enough here and handlers stay out of the business of enumerating
// every failure mode.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var code int
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoActiveCompany),
		errors.Is(err, domain.ErrNotAMember),
		errors.Is(err, domain.ErrInsufficientRole):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidState):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidInput):
		code = http.StatusBadRequest
	default:
		slog.ErrorContext(r.Context(), "Unhandled service error",
			"error", err, "requestID", chmw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithError(w, code, err.Error())
}

// callerID pulls the authenticated identity set by the auth middleware.
// A missing identity means the route was wired without it.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.CallerID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, false
	}
	return id, true
}
