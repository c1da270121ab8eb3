package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
	ErrInvalidInput = errors.New("invalid input")
	ErrProcessing   = errors.New("pdf processing failed")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the client-facing text for err. Toolkit failures
// are reduced to a generic message.
func PublicMessage(err error) string {
	if MapHTTPStatus(err) == http.StatusInternalServerError {
		return ErrProcessing.Error()
	}
	return err.Error()
}
