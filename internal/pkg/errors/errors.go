// Package errors holds the sentinel errors shared by repos and services.
// apierr maps each of them onto an HTTP status and error code.
package errors

import "errors"

// Lookup and access.
var (
	// ErrNotFound also covers rows owned by another user.
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")

	ErrInvalidArgument = errors.New("invalid argument")
)

// Processing and billing.
var (
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrGenerationInProgress = errors.New("generation in progress")
	ErrExtractionFailed     = errors.New("text extraction failed")
	ErrGenerationFailed     = errors.New("artifact generation failed")
	ErrExternalService      = errors.New("external service error")
)
