package racedb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested race, result or season does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoActiveSeason indicates no season is marked active.
	ErrNoActiveSeason = errors.New("no active season")
)
