package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/dayloop/internal/config"
	"github.com/sandeepkv93/dayloop/internal/logging"
	"github.com/sandeepkv93/dayloop/internal/scheduler"
	"github.com/sandeepkv93/dayloop/internal/storage"
	"github.com/sandeepkv93/dayloop/internal/timer"
	"github.com/sandeepkv93/dayloop/internal/update"
	"github.com/sandeepkv93/dayloop/internal/views"
)

func runTUI(ctx context.Context, cfg config.Config) error {
	logFile, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	a, err := openApp(ctx, cfg, logFile)
	if err != nil {
		return err
	}
	defer a.Close()

	engine := scheduler.NewEngine(cfg.SchedulerBuffer, a.clock)
	engine.Start()
	defer engine.Stop()

	model := update.NewModel(update.Deps{
		Context:            ctx,
		Tracker:            a.tracker,
		Catalog:            a.catalog,
		Stats:              a.stats,
		History:            a.repo,
		Scheduler:          engine,
		Clock:              a.clock,
		Location:           a.loc,
		Logger:             a.logger.With("component", "tui"),
		StaleCheckInterval: cfg.StaleCheckInterval,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func runHistory(ctx context.Context, cfg config.Config, args []string) error {
	flagSet := pflag.NewFlagSet("history", pflag.ContinueOnError)
	limit := flagSet.Int("limit", 7, "number of days to show")
	raw := flagSet.Bool("raw", false, "print markdown without rendering")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.repo.ListHistory(ctx, storage.HistoryListFilter{Limit: *limit})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no archived days yet")
		return nil
	}
	for _, rec := range records {
		md := views.HistoryMarkdown(rec)
		if *raw {
			fmt.Println(md)
			continue
		}
		fmt.Println(views.RenderMarkdown(md))
		fmt.Println()
	}
	return nil
}

func runWorkout(ctx context.Context, cfg config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dayloop workout <preset-id>")
	}
	a, err := openApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	preset, err := a.catalog.Get(ctx, args[0])
	if err != nil {
		return err
	}

	session := timer.NewSession(preset.Exercises)
	session.Subscribe(timer.Listener{
		OnPhaseChange: func(next, _ timer.Phase) {
			snap := session.Snapshot()
			switch next {
			case timer.PhasePrep, timer.PhaseWork, timer.PhaseRest:
				fmt.Printf("%-5s %-24s set %d/%d  %s\n", next, snap.CurrentExercise.Name, snap.CurrentSet, snap.TotalSets, views.Clock(snap.TimeRemaining))
			}
		},
		OnExerciseComplete: func(index int) {
			fmt.Printf("done  %s\n", preset.Exercises[index].Name)
		},
	})

	runner := timer.NewRunner(session, a.clock)
	startedAt := a.clock.Now()
	fmt.Printf("%s %s: %d exercises\n", preset.Icon, preset.Name, len(preset.Exercises))
	runner.Start()

	select {
	case <-ctx.Done():
		runner.Stop()
		snap := runner.Snapshot()
		fmt.Printf("\nstopped after %s, not recorded\n", views.Clock(snap.Elapsed))
		return nil
	case <-runner.Done():
	}

	snap := runner.Snapshot()
	if snap.Phase != timer.PhaseComplete {
		return fmt.Errorf("workout stopped in %s", snap.Phase)
	}
	entry, err := a.stats.Record(ctx, preset, startedAt, snap.Elapsed)
	if err != nil {
		return err
	}
	fmt.Printf("complete: %s in %s\n", entry.PresetName, views.Clock(entry.DurationSec))
	return nil
}

func runPresets(ctx context.Context, cfg config.Config) error {
	a, err := openApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	all, err := a.catalog.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range all {
		routine := "-"
		if p.Routine != "" {
			routine = string(p.Routine)
		}
		names := make([]string, 0, len(p.Exercises))
		for _, e := range p.Exercises {
			names = append(names, e.Name)
		}
		fmt.Printf("%-44s %-22s %s  %s\n", p.ID, p.Name, routine, strings.Join(names, ", "))
	}
	return nil
}

func runRollover(ctx context.Context, cfg config.Config) error {
	a, err := openApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	// opening the tracker already archives a stale day; CheckStale covers
	// a midnight crossed since then
	a.tracker.CheckStale(ctx)
	staleDate, rolled := a.tracker.LastRollover()
	state := a.tracker.State(ctx)
	latest, err := a.repo.ListHistory(ctx, storage.HistoryListFilter{Limit: 1})
	if err != nil {
		return err
	}
	last := "none"
	if len(latest) > 0 {
		last = latest[0].Date
	}
	if !rolled {
		staleDate = "-"
	}
	fmt.Printf("today: %s  routine: %s  rolled over now: %t (%s)  last archived: %s\n", state.Date, state.ActiveRoutine, rolled, staleDate, last)
	return nil
}

func runConfig(cfg config.Config, path string, args []string) error {
	flagSet := pflag.NewFlagSet("config", pflag.ContinueOnError)
	write := flagSet.Bool("write", false, "write the effective configuration to the config file")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *write {
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
