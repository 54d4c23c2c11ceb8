package service

import "errors"

var (
	// ErrInvalidCredentials covers a failed login and any token that cannot be
	// resolved to a user. The cause is deliberately not exposed.
	ErrInvalidCredentials = errors.New("could not validate credentials")
	// ErrTokenExpired indicates a genuine token that is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
	// ErrUnauthenticated is returned when a request carries no credentials.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrUserAlreadyExists is returned when registering an email that is taken.
	ErrUserAlreadyExists = errors.New("a user with that email already exists")
	// ErrPostNotFound is returned when a referenced post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrValidation wraps malformed input.
	ErrValidation = errors.New("validation error")
	// ErrUnsupportedSorting is returned for an unknown listing order.
	ErrUnsupportedSorting = errors.New("unsupported sorting option")
)
