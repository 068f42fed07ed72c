package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Using sentinel errors allows services to return specific, recognizable error types
// without coupling them to implementation details like HTTP status codes. The API
// layer can then use `errors.Is()` to check for these specific errors and map
// them to the correct HTTP responses.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConversationBusy signifies that a send was attempted on a
	// conversation that already has a completion request in flight. Only one
	// send may be active per conversation at a time.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConversationBusy = errors.New("conversation busy")

	// ErrEmptyMessage signifies that a send carried neither text nor
	// attachments. Such sends are rejected before touching the transcript.
	ErrEmptyMessage = errors.New("empty message")

	// ErrSessionClosed signifies that an operation was attempted on a
	// conversation session that has already been disposed.
	ErrSessionClosed = errors.New("session closed")

	// ErrInternal signifies an unexpected error on the server. This is a generic
	// error used to prevent leaking sensitive implementation details to the client.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)
