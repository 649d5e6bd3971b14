package racequeue

// ScoreRaceJob scores a race against the result stored as ResultID.
// ResultID keeps each result submission a distinct unique job, so a
// corrected result is never deduplicated against the one it replaces.
type ScoreRaceJob struct {
	RaceID   int64 `json:"race_id"`
	ResultID int64 `json:"result_id"`
}

// Kind returns the job type identifier for River
func (ScoreRaceJob) Kind() string { return "score_race" }

// JobInfo represents information about a queued job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	RaceID      int64  `json:"race_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}

// CloseSeasonJob grants season awards and finishes the season.
type CloseSeasonJob struct {
	SeasonID int64 `json:"season_id"`
}

func (CloseSeasonJob) Kind() string { return "close_season" }
