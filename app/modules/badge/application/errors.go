package badgeservice

import "errors"

var (
	ErrInvalidAchievement   = errors.New("invalid achievement")
	ErrDuplicateAchievement = errors.New("achievement code already exists")
)
