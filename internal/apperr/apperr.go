// Package apperr defines the domain error taxonomy. Services return these
// sentinels so API handlers can map each precondition violation to a
// user-facing message instead of surfacing generic failures.
package apperr

import (
	"errors"
	"net/http"
)

// Domain sentinels. All are recoverable, user-facing conditions.
var (
	ErrAlreadyJoined      = errors.New("challenge already joined")
	ErrNotJoined          = errors.New("challenge not joined")
	ErrEmptySubmission    = errors.New("submission needs files or a description")
	ErrAlreadyUnderReview = errors.New("proof already under review")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyResolved    = errors.New("submission already resolved")
	ErrOutOfStock         = errors.New("reward out of stock")
	ErrInsufficientPoints = errors.New("not enough eco-points")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// HTTPStatus maps a domain error to its HTTP status code. Unrecognized
// errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyJoined),
		errors.Is(err, ErrAlreadyUnderReview),
		errors.Is(err, ErrAlreadyResolved),
		errors.Is(err, ErrOutOfStock),
		errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrNotJoined),
		errors.Is(err, ErrEmptySubmission),
		errors.Is(err, ErrInsufficientPoints):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// IsDomain reports whether err belongs to the recoverable taxonomy above.
func IsDomain(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
