package editor

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for editor operations.
var (
	ErrNotFound        = errors.New("session not found")
	ErrValidation      = errors.New("validation failed")
	ErrToolkit         = errors.New("pdf toolkit failed")
	ErrApplication     = errors.New("edit application failed")
	ErrDocumentMissing = errors.New("pdf file not found")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
)

// ApplicationError identifies the edit that failed while building an output
// document.
type ApplicationError struct {
	Index int
	Type  string
	Err   error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("apply edit %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *ApplicationError) Unwrap() []error {
	return []error{ErrApplication, e.Err}
}

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDocumentMissing) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the client-facing text for err. Toolkit and
// application failures are reduced to a generic message.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrDocumentMissing):
		return ErrDocumentMissing.Error()
	case errors.Is(err, ErrFileTooLarge):
		return ErrFileTooLarge.Error()
	case errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "pdf processing failed"
	}
}
