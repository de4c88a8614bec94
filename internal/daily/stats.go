package daily

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/dayloop/internal/clock"
	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/storage"
)

type LogStore interface {
	CreateWorkoutLog(ctx context.Context, in model.WorkoutLog) error
	ListWorkoutLogs(ctx context.Context, filter storage.WorkoutLogFilter) ([]model.WorkoutLog, error)
}

// Stats records finished workouts and answers per-day queries for the
// archiver.
type Stats struct {
	logs LogStore
	loc  *time.Location
}

func NewStats(logs LogStore, loc *time.Location) *Stats {
	if loc == nil {
		loc = time.Local
	}
	return &Stats{logs: logs, loc: loc}
}

func (s *Stats) Record(ctx context.Context, preset model.WorkoutPreset, startedAt time.Time, durationSec int) (model.WorkoutLog, error) {
	if durationSec < 0 {
		durationSec = 0
	}
	entry := model.WorkoutLog{
		ID:          uuid.NewString(),
		PresetID:    preset.ID,
		PresetName:  preset.Name,
		StartedAt:   startedAt,
		DurationSec: durationSec,
	}
	if err := s.logs.CreateWorkoutLog(ctx, entry); err != nil {
		return model.WorkoutLog{}, fmt.Errorf("record workout: %w", err)
	}
	return entry, nil
}

// ForDate lists the logs whose start falls on date in the stats location.
func (s *Stats) ForDate(ctx context.Context, date string) ([]model.WorkoutLog, error) {
	start, err := time.ParseInLocation(clock.DateLayout, date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("workout logs for %q: %w", date, err)
	}
	return s.logs.ListWorkoutLogs(ctx, storage.WorkoutLogFilter{
		From: start,
		To:   start.AddDate(0, 0, 1),
	})
}
