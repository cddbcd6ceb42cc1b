package sermons

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lectern/internal/audio"
)

var (
	// ErrNotFound indicates no sermon exists with the given id.
	ErrNotFound = errors.New("sermon not found")
	// ErrAssetAbsent indicates the sermon's audio was already gone from the asset store.
	// The record is kept.
	ErrAssetAbsent = errors.New("sermon audio not found in asset store")
	// ErrMissingFields indicates required form fields were absent.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidForm indicates the request body was not a readable multipart form.
	ErrInvalidForm = errors.New("invalid multipart form")
	// ErrFileTooLarge indicates the audio part exceeded the upload ceiling.
	ErrFileTooLarge = errors.New("audio exceeds maximum upload size")
	// ErrPersistence wraps a failed metadata store operation.
	ErrPersistence = errors.New("sermon store unavailable")
)

// MapHTTPStatus maps sermon and audio errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAssetAbsent):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidForm):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrPersistence):
		return http.StatusServiceUnavailable
	}
	return audio.MapHTTPStatus(err)
}
