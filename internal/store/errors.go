package store

import "errors"

var (
	// ErrInvalidInput covers empty or negative fields the caller can fix and retry.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateUser is returned when registering a username that already exists.
	ErrDuplicateUser = errors.New("username already exists")

	// ErrAuthFailure is returned for a failed login. Unknown-user and
	// wrong-password cases are deliberately indistinguishable.
	ErrAuthFailure = errors.New("invalid username or password")

	// ErrWrongPassword guards password changes.
	ErrWrongPassword = errors.New("current password is incorrect")
)
