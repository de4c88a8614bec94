package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sandeepkv93/dayloop/internal/clock"
	"github.com/sandeepkv93/dayloop/internal/config"
	"github.com/sandeepkv93/dayloop/internal/daily"
	"github.com/sandeepkv93/dayloop/internal/logging"
	"github.com/sandeepkv93/dayloop/internal/presets"
	"github.com/sandeepkv93/dayloop/internal/storage"
)

// app is the wired set of services shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	loc     *time.Location
	clock   clock.Clock
	repo    *storage.SQLiteRepository
	stats   *daily.Stats
	tracker *daily.Tracker
	catalog *presets.Catalog
	closers []io.Closer
}

// openApp opens the database and the daily record. Opening the record
// archives a stale day, so every subcommand sees today's state.
func openApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	a := &app{cfg: cfg, clock: clock.Real()}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Output: logOut})
	if err != nil {
		return nil, err
	}
	a.logger = logger

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a.loc = loc

	repo, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DatabasePath, err)
	}
	a.repo = repo
	a.closers = append(a.closers, repo)

	a.stats = daily.NewStats(repo, loc)
	a.catalog = presets.NewCatalog(repo)

	goals := daily.Goals{
		Protein:        cfg.Goals.Protein,
		Hydration:      cfg.Goals.Hydration,
		Mindfulness:    cfg.Goals.Mindfulness,
		NonNegotiables: cfg.NonNegotiables,
	}
	archiver := daily.NewArchiver(repo, a.stats, a.clock, logger.With("component", "archiver"))
	tracker, err := daily.NewTracker(ctx, repo, archiver, daily.TrackerOptions{
		Key:      cfg.Key("daily"),
		Goals:    goals,
		Clock:    a.clock,
		Location: loc,
		Logger:   logger.With("component", "daily"),
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open daily record: %w", err)
	}
	a.tracker = tracker
	logger.Debug("dayloop ready", "db", cfg.DatabasePath, "timezone", loc.String(), "date", tracker.State(ctx).Date)
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
