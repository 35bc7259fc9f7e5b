package storeapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by every 401 response.
	ErrUnauthorized = errors.New("storeapi: unauthorized")
	// ErrNotFound is matched by every 404 response.
	ErrNotFound = errors.New("storeapi: not found")
)

// APIError is a non-2xx response from the store API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store api: %d %s", e.Status, e.Message)
}

// Is lets errors.Is match the sentinel for the status code.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Message extracts the user-facing text of err, falling back to fallback
// for transport failures.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
