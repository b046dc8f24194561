package types

import "errors"

// Error taxonomy shared by the job service and the request layer.
var (
	// ErrNotFound indicates the referenced job does not exist
	ErrNotFound = errors.New("job not found")

	// ErrInvalidInput indicates bad parameters, an unsupported file
	// extension, or a failed confirmation match
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidState indicates an operation not valid for the job's
	// current status
	ErrInvalidState = errors.New("invalid job state")

	// ErrNotConfigured indicates a collaborator is missing required
	// credentials (LLM endpoint, diarization token)
	ErrNotConfigured = errors.New("not configured")
)
