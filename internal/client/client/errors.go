package client

import "errors"

var (
	// ErrUnavailable covers network failures and server-side errors.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is returned after the backend rejected the bearer
	// token. By the time a caller sees it, the session slot has already
	// been cleared and the session-invalidated hook has fired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the requested item does not exist or
	// does not belong to the current session.
	ErrNotFound = errors.New("not found")
)
