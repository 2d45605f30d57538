package custom_errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound indicates no row matched the requested id.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing, malformed, expired or wrong credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition indicates a status change the job lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StoreError wraps a backend failure together with the operation that produced it.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is or wraps a *StoreError.
func IsStoreError(err error) bool {
	var s *StoreError
	return errors.As(err, &s)
}

// HTTPStatus maps an error from any layer to the status code an API response should carry.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
