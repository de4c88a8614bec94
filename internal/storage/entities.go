package storage

import "time"

type HistoryListFilter struct {
	Limit  int
	Offset int
}

// WorkoutLogFilter selects logs with From <= started_at < To. Zero bounds
// are open.
type WorkoutLogFilter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
