package ideaboard

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned for any mutating call with no identity.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUnauthorized is returned when the remote store rejects an
	// update/delete. Ownership mismatches surface as this error; the
	// message stays generic on purpose.
	ErrUnauthorized = errors.New("operation rejected by remote store")

	// ErrRemoteUnavailable is returned on transport failure.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrRemoteRejected is returned when the remote store refuses an
	// operation, e.g. a constraint violation.
	ErrRemoteRejected = errors.New("remote store rejected the request")
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError reports the first field of an input that failed a
// constraint. It is always resolved locally, before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for input validation failures.
var ErrValidation = ValidationError{}
