package model

import "errors"

var (
	// Auth related errors. ErrAuthenticationFailed is the only error a
	// caller ever sees for a failed login or token check; the more specific
	// sentinels exist for internal logging and tests.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenNotFound        = errors.New("token not found")

	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyTaken = errors.New("email already taken")

	// Todo related errors
	ErrTodoNotFound = errors.New("todo not found")

	// The database could not be reached or the query failed. Never
	// conflated with a failed authentication.
	ErrStoreUnavailable = errors.New("store unavailable")
)
