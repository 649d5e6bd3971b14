package scoringdb

import "errors"

var (
	// ErrNotFound is returned when a bet does not exist.
	ErrNotFound = errors.New("bet not found")
	// ErrNoRowsAffected is returned when an update matched no bet.
	ErrNoRowsAffected = errors.New("no rows affected")
)
