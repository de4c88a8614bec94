// Package persist keeps a single typed value in a Backend as a dated JSON
// envelope, optionally discarding it when the calendar day changes.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/dayloop/internal/clock"
	"github.com/sandeepkv93/dayloop/internal/logging"
)

// RolloverFunc receives the value that went stale and the date it was
// saved under. It runs while the container is locked and must not call
// back into the container.
type RolloverFunc[T any] func(ctx context.Context, stale T, staleDate string) error

type Options[T any] struct {
	Key     string
	Default func() T
	// DayBoundary enables rollover when the stored date is not today.
	DayBoundary bool
	OnRollover  RolloverFunc[T]
	// Validate, when set, rejects a decoded value; a rejected value is
	// handled like a corrupt payload.
	Validate func(T) error
	Clock    clock.Clock
	Location *time.Location
	Logger   *slog.Logger
}

type envelope[T any] struct {
	Date  string `json:"date"`
	Value T      `json:"value"`
}

type Container[T any] struct {
	backend Backend
	opts    Options[T]
	logger  *slog.Logger

	mu    sync.Mutex
	value T
	date  string
}

// Open loads the stored envelope for opts.Key. Missing or corrupt data
// falls back to the default; a stale envelope is rolled over before Open
// returns. Errors are reserved for invalid options.
func Open[T any](ctx context.Context, backend Backend, opts Options[T]) (*Container[T], error) {
	if backend == nil {
		return nil, errors.New("persist: nil backend")
	}
	if opts.Key == "" {
		return nil, errors.New("persist: empty key")
	}
	if opts.Default == nil {
		opts.Default = func() T {
			var zero T
			return zero
		}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	c := &Container[T]{
		backend: backend,
		opts:    opts,
		logger:  logging.OrDiscard(opts.Logger).With("key", opts.Key),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(ctx)
	return c, nil
}

func (c *Container[T]) loadLocked(ctx context.Context) {
	today := c.today()
	c.value = c.opts.Default()
	c.date = today

	raw, err := c.backend.Load(ctx, c.opts.Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("load persisted state", "error", err)
		}
		return
	}
	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("discarding corrupt persisted state", "error", err)
		return
	}
	if c.opts.Validate != nil {
		if err := c.opts.Validate(env.Value); err != nil {
			c.logger.Warn("discarding invalid persisted state", "date", env.Date, "error", err)
			return
		}
	}
	if env.Date == "" {
		env.Date = today
	}
	c.value = env.Value
	c.date = env.Date
	if c.opts.DayBoundary && env.Date != today {
		c.rolloverLocked(ctx, today)
	}
}

// Get returns the live value. Reference-typed fields are shared with the
// container; copy before mutating.
func (c *Container[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Date is the calendar date the live value belongs to.
func (c *Container[T]) Date() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.date
}

// Set replaces the value and saves it under today's date. A pending
// rollover is applied first so yesterday's value is archived, not lost.
func (c *Container[T]) Set(ctx context.Context, v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkStaleLocked(ctx)
	c.value = v
	c.date = c.today()
	return c.saveLocked(ctx)
}

// Update applies fn to the current value. When fn fails nothing changes.
func (c *Container[T]) Update(ctx context.Context, fn func(T) (T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkStaleLocked(ctx)
	next, err := fn(c.value)
	if err != nil {
		return err
	}
	c.value = next
	c.date = c.today()
	return c.saveLocked(ctx)
}

// Reset restores the default without invoking the rollover callback.
func (c *Container[T]) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = c.opts.Default()
	c.date = c.today()
	return c.saveLocked(ctx)
}

// CheckStale rolls the value over if the day has changed since it was
// saved and reports whether it did.
func (c *Container[T]) CheckStale(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkStaleLocked(ctx)
}

// Watch calls CheckStale every interval and whenever visible receives,
// until ctx is done. A nil visible channel is never selected.
func (c *Container[T]) Watch(ctx context.Context, interval time.Duration, visible <-chan struct{}) {
	ticker := c.opts.Clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckStale(ctx)
		case _, ok := <-visible:
			if !ok {
				visible = nil
				continue
			}
			c.CheckStale(ctx)
		}
	}
}

func (c *Container[T]) checkStaleLocked(ctx context.Context) bool {
	if !c.opts.DayBoundary {
		return false
	}
	today := c.today()
	if c.date == today {
		return false
	}
	c.rolloverLocked(ctx, today)
	return true
}

// rolloverLocked is the single path from a stale value to a fresh default.
// The saved default carries today's date, so later checks see it as fresh.
func (c *Container[T]) rolloverLocked(ctx context.Context, today string) {
	stale, staleDate := c.value, c.date
	c.logger.Info("rolling over", "stale_date", staleDate, "date", today)
	if c.opts.OnRollover != nil {
		if err := c.invokeRollover(ctx, stale, staleDate); err != nil {
			c.logger.Error("rollover callback failed", "stale_date", staleDate, "error", err)
		}
	}
	c.value = c.opts.Default()
	c.date = today
	if err := c.saveLocked(ctx); err != nil {
		c.logger.Error("persist after rollover", "error", err)
	}
}

func (c *Container[T]) invokeRollover(ctx context.Context, stale T, staleDate string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("persist: rollover callback panicked: %v", r)
		}
	}()
	return c.opts.OnRollover(ctx, stale, staleDate)
}

func (c *Container[T]) saveLocked(ctx context.Context) error {
	payload, err := json.Marshal(envelope[T]{Date: c.date, Value: c.value})
	if err != nil {
		return fmt.Errorf("persist: encode %s: %w", c.opts.Key, err)
	}
	if err := c.backend.Save(ctx, c.opts.Key, payload); err != nil {
		c.logger.Warn("save persisted state", "error", err)
		return fmt.Errorf("persist: save %s: %w", c.opts.Key, err)
	}
	return nil
}

func (c *Container[T]) today() string {
	return clock.DateString(c.opts.Clock.Now(), c.opts.Location)
}
