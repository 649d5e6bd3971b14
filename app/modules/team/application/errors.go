package teamservice

import "errors"

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamFull           = errors.New("team already has a partner")
	ErrAlreadyInTeam      = errors.New("user already belongs to a team this season")
	ErrNotInTeam          = errors.New("user is not a partner of any team this season")
	ErrCaptainCannotLeave = errors.New("captain cannot leave the team")
	ErrNotCaptain         = errors.New("only the captain can remove the partner")
	ErrNoPartner          = errors.New("team has no partner")
	ErrInvalidTeam        = errors.New("invalid team")
	ErrLedgerBusy         = errors.New("season points are being recalculated, try again")
)
