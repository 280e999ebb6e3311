package core

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every operation. Handlers map these to HTTP statuses and
// callable error codes in one place.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
)

// UpstreamError is a failure reported by an external service. Status is the HTTP status
// the service answered with, or 0 when it is not known.
type UpstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError of service. Errors that already belong to the
// taxonomy are returned unchanged.
func Upstream(service string, status int, err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}
	return &UpstreamError{Service: service, Status: status, Err: err}
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func isClassified(err error) bool {
	var upstream *UpstreamError
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.As(err, &upstream)
}
