package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

// Error carries an HTTP status and a machine readable code alongside the cause.
// Operational errors are expected failures whose message is safe to show to clients.
type Error struct {
	Status      int
	Code        string
	Err         error
	Operational bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err, Operational: true}
}

func newf(status int, code, msg string) *Error {
	return New(status, code, errors.New(msg))
}

func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return newf(http.StatusUnauthorized, "unauthenticated", msg)
}

func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "forbidden"
	}
	return newf(http.StatusForbidden, "forbidden", msg)
}

// Validation uses code validation_failed unless the caller supplies one.
func Validation(code, msg string) *Error {
	if code == "" {
		code = "validation_failed"
	}
	return newf(http.StatusBadRequest, code, msg)
}

func InsufficientCredits(msg string) *Error {
	if msg == "" {
		msg = "insufficient credits"
	}
	return newf(http.StatusPaymentRequired, "insufficient_credits", msg)
}

func ExternalService(err error) *Error {
	if err == nil {
		err = pkgerrors.ErrExternalService
	}
	return New(http.StatusBadGateway, "external_service_error", err)
}

func NotFound(msg string) *Error {
	if msg == "" {
		msg = "not found"
	}
	return newf(http.StatusNotFound, "not_found", msg)
}

func Conflict(msg string) *Error {
	if msg == "" {
		msg = "conflict"
	}
	return newf(http.StatusConflict, "conflict", msg)
}

func ExtractionFailed(err error) *Error {
	if err == nil {
		err = pkgerrors.ErrExtractionFailed
	}
	return New(http.StatusUnprocessableEntity, "extraction_failed", err)
}

func GenerationFailed(err error) *Error {
	if err == nil {
		err = pkgerrors.ErrGenerationFailed
	}
	return New(http.StatusBadGateway, "generation_failed", err)
}

// Internal wraps an unexpected error. Its message is masked in production.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Err: err}
}

// From maps any error returned by a service onto the taxonomy.
// Errors that match no sentinel become non-operational 500s.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthenticated", err)
	case errors.Is(err, pkgerrors.ErrForbidden):
		return New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, pkgerrors.ErrInsufficientCredits):
		return New(http.StatusPaymentRequired, "insufficient_credits", err)
	case errors.Is(err, pkgerrors.ErrGenerationInProgress), errors.Is(err, pkgerrors.ErrConflict):
		return New(http.StatusConflict, "conflict", err)
	case errors.Is(err, pkgerrors.ErrExtractionFailed):
		return ExtractionFailed(err)
	case errors.Is(err, pkgerrors.ErrGenerationFailed):
		return GenerationFailed(err)
	case errors.Is(err, pkgerrors.ErrExternalService):
		return ExternalService(err)
	default:
		return Internal(err)
	}
}
