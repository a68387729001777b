package mutate

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidItem   = errors.New("Invalid post.")
	ErrInvalidStatus = errors.New("Invalid status.")
	ErrInvalidType   = errors.New("Invalid post type.")
)

// AuthorizationError is a missing or bad nonce, or a viewer lacking the capability the operation needs.
type AuthorizationError struct {
	Op      string
	ItemID  int64
	Message string
}

func (e AuthorizationError) Error() string {
	if e.Message == "" {
		return "Permission denied."
	}
	return e.Message
}

// ValidationError is a request value outside the operation's closed set.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("Invalid %s.", e.Field)
	}
	return e.Err.Error()
}

func (e ValidationError) Unwrap() error { return e.Err }

// MutationError means the store rejected a write that passed validation.
type MutationError struct {
	Op      string
	ItemID  int64
	Message string
	Err     error
}

func (e MutationError) Error() string {
	return e.Message
}

func (e MutationError) Unwrap() error { return e.Err }

// HTTPStatus maps a mutation error to its response code. Unknown errors count as mutation failures.
func HTTPStatus(err error) int {
	var authErr AuthorizationError
	var valErr ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &authErr):
		return http.StatusForbidden
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
