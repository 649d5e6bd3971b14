package rankingservice

import "errors"

var (
	ErrInvalidCategory = errors.New("invalid ranking category")
	ErrRankingBusy     = errors.New("ranking refresh already running for season")
)
