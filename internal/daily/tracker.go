// Package daily owns the "today" record: user mutations during the day,
// prayer-list normalization, and the midnight archive into history.
package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/dayloop/internal/clock"
	"github.com/sandeepkv93/dayloop/internal/logging"
	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/persist"
)

var ErrNotFound = errors.New("daily: not found")

var errUnchanged = errors.New("daily: unchanged")

type Goals struct {
	Protein        int
	Hydration      int
	Mindfulness    int
	NonNegotiables []string
}

func DefaultGoals() Goals {
	return Goals{
		Protein:        120,
		Hydration:      8,
		Mindfulness:    10,
		NonNegotiables: []string{"Read 10 pages", "No sugar", "Sleep by 23:00"},
	}
}

type TrackerOptions struct {
	Key      string
	Goals    Goals
	Clock    clock.Clock
	Location *time.Location
	Logger   *slog.Logger
}

type Tracker struct {
	container *persist.Container[model.DailyState]
	archiver  *Archiver
	goals     Goals
	clock     clock.Clock
	loc       *time.Location
	logger    *slog.Logger

	mu          sync.Mutex
	nextRoutine model.Routine
	archived    string
}

// NewTracker opens the daily record from backend. A record left over from
// an earlier day is archived through archiver before this returns.
func NewTracker(ctx context.Context, backend persist.Backend, archiver *Archiver, opts TrackerOptions) (*Tracker, error) {
	if opts.Key == "" {
		opts.Key = "dayloop:daily"
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	t := &Tracker{
		archiver:    archiver,
		goals:       opts.Goals,
		clock:       opts.Clock,
		loc:         opts.Location,
		logger:      logging.OrDiscard(opts.Logger),
		nextRoutine: model.RoutineA,
	}
	container, err := persist.Open(ctx, backend, persist.Options[model.DailyState]{
		Key:         opts.Key,
		Default:     t.defaultState,
		DayBoundary: true,
		OnRollover:  t.rollover,
		Validate:    t.validateStored,
		Clock:       opts.Clock,
		Location:    opts.Location,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	t.container = container
	t.normalize(ctx)
	return t, nil
}

func (t *Tracker) defaultState() model.DailyState {
	t.mu.Lock()
	routine := t.nextRoutine
	t.mu.Unlock()

	nn := make([]model.NonNegotiable, 0, len(t.goals.NonNegotiables))
	for _, label := range t.goals.NonNegotiables {
		nn = append(nn, model.NonNegotiable{ID: slug(label), Label: label})
	}
	return model.DailyState{
		Date:           clock.Today(t.clock, t.loc),
		Tasks:          []model.Task{},
		Protein:        model.Protein{Goal: t.goals.Protein},
		Hydration:      model.Hydration{Goal: t.goals.Hydration},
		Mindfulness:    model.Mindfulness{Goal: t.goals.Mindfulness},
		NonNegotiables: nn,
		ActiveRoutine:  routine,
		Prayers:        []model.PrayerStatus{},
	}
}

// rollover archives the stale day and picks the next day's routine: it
// alternates after a day with at least one workout.
func (t *Tracker) rollover(ctx context.Context, stale model.DailyState, staleDate string) error {
	next := stale.ActiveRoutine
	if !next.IsValid() {
		next = model.RoutineA
	}
	var err error
	if t.archiver != nil {
		var rec model.HistoryRecord
		rec, _, err = t.archiver.Archive(ctx, stale, staleDate)
		if err == nil && rec.Workout.Count > 0 {
			next = next.Next()
		}
	}
	t.mu.Lock()
	t.nextRoutine = next
	t.archived = staleDate
	t.mu.Unlock()
	return err
}

// validateStored checks a loaded record after the legacy prayer cleanup
// that normalize applies anyway.
func (t *Tracker) validateStored(s model.DailyState) error {
	s = s.Clone()
	s.Prayers, _ = NormalizePrayers(s.Prayers, t.clock.Now())
	return s.Validate()
}

func (t *Tracker) normalize(ctx context.Context) {
	err := t.update(ctx, func(s *model.DailyState) error {
		prayers, changed := NormalizePrayers(s.Prayers, t.clock.Now())
		if !changed {
			return errUnchanged
		}
		s.Prayers = prayers
		return nil
	})
	if err != nil {
		t.logger.Warn("persist normalized prayers", "error", err)
	}
}

// update runs fn on a private copy and saves it. fn returning errUnchanged
// skips the save without reporting an error.
func (t *Tracker) update(ctx context.Context, fn func(*model.DailyState) error) error {
	err := t.container.Update(ctx, func(cur model.DailyState) (model.DailyState, error) {
		next := cur.Clone()
		if err := fn(&next); err != nil {
			return cur, err
		}
		return next, nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// State returns a copy of today's record with the prayer list normalized.
func (t *Tracker) State(ctx context.Context) model.DailyState {
	t.normalize(ctx)
	out := t.container.Get().Clone()
	out.Date = t.container.Date()
	return out
}

func (t *Tracker) AddTask(ctx context.Context, title string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, errors.New("daily: task title is required")
	}
	task := model.Task{ID: uuid.NewString(), Title: title}
	err := t.update(ctx, func(s *model.DailyState) error {
		s.Tasks = append(s.Tasks, task)
		return nil
	})
	return task, err
}

func (t *Tracker) ToggleTask(ctx context.Context, id string) error {
	return t.update(ctx, func(s *model.DailyState) error {
		for i := range s.Tasks {
			if s.Tasks[i].ID != id {
				continue
			}
			if s.Tasks[i].Done {
				s.Tasks[i].Done = false
				s.Tasks[i].CompletedAt = nil
			} else {
				now := t.clock.Now()
				s.Tasks[i].Done = true
				s.Tasks[i].CompletedAt = &now
			}
			return nil
		}
		return fmt.Errorf("%w: task %s", ErrNotFound, id)
	})
}

func (t *Tracker) RemoveTask(ctx context.Context, id string) error {
	return t.update(ctx, func(s *model.DailyState) error {
		for i := range s.Tasks {
			if s.Tasks[i].ID == id {
				s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: task %s", ErrNotFound, id)
	})
}

func (t *Tracker) AddProtein(ctx context.Context, grams int) error {
	return t.update(ctx, func(s *model.DailyState) error {
		s.Protein.Current = clampAdd(s.Protein.Current, grams)
		return nil
	})
}

func (t *Tracker) AddGlasses(ctx context.Context, n int) error {
	return t.update(ctx, func(s *model.DailyState) error {
		s.Hydration.Glasses = clampAdd(s.Hydration.Glasses, n)
		return nil
	})
}

func (t *Tracker) AddGlass(ctx context.Context) error    { return t.AddGlasses(ctx, 1) }
func (t *Tracker) RemoveGlass(ctx context.Context) error { return t.AddGlasses(ctx, -1) }

func (t *Tracker) AddMindfulness(ctx context.Context, minutes int) error {
	return t.update(ctx, func(s *model.DailyState) error {
		s.Mindfulness.Minutes = clampAdd(s.Mindfulness.Minutes, minutes)
		return nil
	})
}

func (t *Tracker) ToggleNonNegotiable(ctx context.Context, id string) error {
	return t.update(ctx, func(s *model.DailyState) error {
		for i := range s.NonNegotiables {
			if s.NonNegotiables[i].ID == id {
				s.NonNegotiables[i].Done = !s.NonNegotiables[i].Done
				return nil
			}
		}
		return fmt.Errorf("%w: non-negotiable %s", ErrNotFound, id)
	})
}

func (t *Tracker) SetRoutine(ctx context.Context, r model.Routine) error {
	if !r.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidRoutine, r)
	}
	return t.update(ctx, func(s *model.DailyState) error {
		s.ActiveRoutine = r
		return nil
	})
}

// MarkPrayer records id as prayed. Marking it again changes the type and
// keeps the original completion time.
func (t *Tracker) MarkPrayer(ctx context.Context, id string, typ model.PrayerType) error {
	id = strings.ToLower(strings.TrimSpace(id))
	if !model.IsDailyPrayer(id) {
		return fmt.Errorf("%w: %q", model.ErrInvalidPrayer, id)
	}
	if typ == "" {
		typ = model.PrayerAlone
	}
	if !typ.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidPrayerType, typ)
	}
	now := t.clock.Now()
	return t.update(ctx, func(s *model.DailyState) error {
		s.Prayers, _ = NormalizePrayers(s.Prayers, now)
		for i := range s.Prayers {
			if s.Prayers[i].ID == id {
				s.Prayers[i].Type = typ
				return nil
			}
		}
		s.Prayers = append(s.Prayers, model.PrayerStatus{ID: id, Type: typ, CompletedAt: now})
		return nil
	})
}

func (t *Tracker) UnmarkPrayer(ctx context.Context, id string) error {
	id = strings.ToLower(strings.TrimSpace(id))
	now := t.clock.Now()
	return t.update(ctx, func(s *model.DailyState) error {
		s.Prayers, _ = NormalizePrayers(s.Prayers, now)
		for i := range s.Prayers {
			if s.Prayers[i].ID == id {
				s.Prayers = append(s.Prayers[:i], s.Prayers[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: prayer %s", ErrNotFound, id)
	})
}

// Prayers returns today's normalized prayer list.
func (t *Tracker) Prayers(ctx context.Context) []model.PrayerStatus {
	return t.State(ctx).Prayers
}

// Reset discards today's progress without archiving it.
func (t *Tracker) Reset(ctx context.Context) error {
	return t.container.Reset(ctx)
}

// CheckStale archives and resets if the calendar day has changed.
func (t *Tracker) CheckStale(ctx context.Context) bool {
	return t.container.CheckStale(ctx)
}

// LastRollover reports the stale date most recently rolled over by this
// tracker, including a rollover performed while opening.
func (t *Tracker) LastRollover() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.archived, t.archived != ""
}

func clampAdd(cur, delta int) int {
	if cur+delta < 0 {
		return 0
	}
	return cur + delta
}

func slug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
