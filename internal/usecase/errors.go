package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrInsufficientPoints = errors.New("insufficient points")
	ErrMatchNotFound      = errors.New("match not found")
	ErrBettingClosed      = errors.New("betting closed")
	ErrBetNotFound        = errors.New("bet not found")
	ErrAlreadySettled     = errors.New("bet already settled")
)
