package daily

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sandeepkv93/dayloop/internal/clock"
	"github.com/sandeepkv93/dayloop/internal/logging"
	"github.com/sandeepkv93/dayloop/internal/model"
)

// CaloriesPerMinute is the flat burn rate used for history summaries.
const CaloriesPerMinute = 10

type HistoryStore interface {
	InsertHistory(ctx context.Context, rec model.HistoryRecord) (bool, error)
}

// Archiver turns a stale day into a HistoryRecord and stores it once.
type Archiver struct {
	history HistoryStore
	stats   *Stats
	clock   clock.Clock
	logger  *slog.Logger
}

func NewArchiver(history HistoryStore, stats *Stats, c clock.Clock, logger *slog.Logger) *Archiver {
	if c == nil {
		c = clock.Real()
	}
	return &Archiver{history: history, stats: stats, clock: c, logger: logging.OrDiscard(logger)}
}

// BuildHistoryRecord summarizes state as of date. logs should already be
// restricted to that date.
func BuildHistoryRecord(state model.DailyState, date string, logs []model.WorkoutLog, now time.Time) model.HistoryRecord {
	duration := 0
	for _, l := range logs {
		duration += l.DurationSec
	}
	prayers, _ := NormalizePrayers(state.Prayers, now)
	return model.HistoryRecord{
		Date: date,
		Workout: model.WorkoutSummary{
			Count:    len(logs),
			Duration: duration,
			Calories: int(math.Round(float64(duration) / 60 * CaloriesPerMinute)),
		},
		Nutrition: model.NutritionSummary{
			Protein: state.Protein.Current,
			Water:   state.Hydration.Glasses,
		},
		Mindfulness: model.MindfulnessSummary{Minutes: state.Mindfulness.Minutes},
		Prayers: model.PrayerSummary{
			Completed: prayers,
			Total:     model.PrayersPerDay,
		},
	}
}

// Archive stores the record for date unless one exists. The record is
// returned either way; inserted reports whether it was new. A failed
// workout-log lookup archives the day with an empty workout summary.
func (a *Archiver) Archive(ctx context.Context, stale model.DailyState, date string) (model.HistoryRecord, bool, error) {
	var logs []model.WorkoutLog
	if a.stats != nil {
		var err error
		logs, err = a.stats.ForDate(ctx, date)
		if err != nil {
			a.logger.Error("load workout logs for archive", "date", date, "error", err)
			logs = nil
		}
	}
	rec := BuildHistoryRecord(stale, date, logs, a.clock.Now())
	inserted, err := a.history.InsertHistory(ctx, rec)
	if err != nil {
		return rec, false, fmt.Errorf("archive %s: %w", date, err)
	}
	if inserted {
		a.logger.Info("archived day", "date", date, "workouts", rec.Workout.Count, "prayers", len(rec.Prayers.Completed))
	} else {
		a.logger.Debug("history already present", "date", date)
	}
	return rec, inserted, nil
}
