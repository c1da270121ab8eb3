// Package images renders document pages to PNG or JPEG images.
package images

import (
	"errors"
	"net/http"
)

// Domain errors for image operations.
var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrPageOutOfRange      = errors.New("page number out of range")
	ErrInvalidRenderOption = errors.New("invalid render option")
	ErrRenderFailed        = errors.New("render failed")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPageOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidRenderOption):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
