package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/persist"
)

var ErrNotFound = errors.New("storage: not found")

// errKeyNotFound satisfies both ErrNotFound and persist.ErrNotFound so the
// repository can back a persist.Container directly.
var errKeyNotFound = fmt.Errorf("%w: %w", ErrNotFound, persist.ErrNotFound)

type Repository interface {
	persist.Backend

	InsertHistory(ctx context.Context, rec model.HistoryRecord) (bool, error)
	GetHistory(ctx context.Context, date string) (model.HistoryRecord, error)
	ListHistory(ctx context.Context, filter HistoryListFilter) ([]model.HistoryRecord, error)

	CreateWorkoutLog(ctx context.Context, in model.WorkoutLog) error
	ListWorkoutLogs(ctx context.Context, filter WorkoutLogFilter) ([]model.WorkoutLog, error)

	SaveCustomPreset(ctx context.Context, in model.WorkoutPreset) error
	GetCustomPreset(ctx context.Context, id string) (model.WorkoutPreset, error)
	DeleteCustomPreset(ctx context.Context, id string) error
	ListCustomPresets(ctx context.Context) ([]model.WorkoutPreset, error)
}
