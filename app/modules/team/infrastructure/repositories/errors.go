package teamdb

import "errors"

var (
	// ErrNotFound is returned when a team does not exist.
	ErrNotFound = errors.New("team not found")
	// ErrNoRowsAffected is returned when a ledger update matched no team.
	ErrNoRowsAffected = errors.New("no rows affected")
)
