package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	app_errors "pocketchat/internal/errors"
)

// This file contains shared DTOs for API responses and helper functions for
// sending consistent HTTP responses.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondWithError is the centralized error handling function for the API layer.
// It maps domain sentinel errors to appropriate HTTP status codes and formats
// a standard JSON error response.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested conversation was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		// Validation errors carry a message that is already descriptive
		// and safe to show.
		message = err.Error()
	case errors.Is(err, app_errors.ErrEmptyMessage):
		statusCode = http.StatusBadRequest
		message = "A message needs text or at least one attachment."
	case errors.Is(err, app_errors.ErrConversationBusy):
		statusCode = http.StatusConflict
		message = "A reply for this conversation is already being generated."
	case errors.Is(err, app_errors.ErrSessionClosed):
		statusCode = http.StatusConflict
		message = "This conversation has been closed."
	default:
		// Any unhandled error is an internal server error. The generic
		// message prevents leaking implementation details to the client.
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	// The original, more detailed error is logged for debugging purposes,
	// while the generic message is what the client sees.
	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)

	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondWithJSON is a low-level helper for marshaling a payload to JSON
// and writing it to the http.ResponseWriter with a given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		// This indicates a server-side programming error (e.g., trying to marshal a channel).
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
