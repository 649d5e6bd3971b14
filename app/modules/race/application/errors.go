package raceservice

import "errors"

var (
	ErrRaceNotFound          = errors.New("race not found")
	ErrSeasonNotFound        = errors.New("season not found")
	ErrNoActiveSeason        = errors.New("no active season")
	ErrSeasonAlreadyFinished = errors.New("season already finished")
	ErrInvalidSchedule       = errors.New("invalid race schedule")
)
