package audio

import (
	"errors"
	"net/http"
)

var (
	// ErrUploadFailed wraps a failed remote write or delete.
	ErrUploadFailed = errors.New("audio upload failed")
	// ErrUnavailable wraps a remote store that could not be reached.
	ErrUnavailable = errors.New("audio store unavailable")
	// ErrTooLarge indicates the payload exceeds the configured ceiling.
	ErrTooLarge = errors.New("audio exceeds maximum upload size")
	// ErrEmpty indicates a zero-length payload.
	ErrEmpty = errors.New("audio is empty")
	// ErrInvalidID indicates an asset id outside the audio namespace.
	ErrInvalidID = errors.New("invalid asset id")
)

// MapHTTPStatus maps audio errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrEmpty), errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUploadFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
