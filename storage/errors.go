// Package storage persists users, tickets and the audit trail as JSON
// documents on disk. The lookup history is deliberately not stored here; it
// is memory-only and resets on restart.
package storage

import "errors"

// Storage error constants
var (
	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUsername is returned when a username is already taken
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrReservedUsername is returned when attempting to register the
	// static admin account's username
	ErrReservedUsername = errors.New("username is reserved")

	// ErrInvalidCredentials is returned when authentication fails
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrTicketNotFound is returned when a ticket is not found
	ErrTicketNotFound = errors.New("ticket not found")
)
