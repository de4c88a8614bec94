package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/persist"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dayloop-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestKVLoadSaveOverwrite(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Load(ctx, "dayloop:daily")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, persist.ErrNotFound) {
		t.Fatalf("expected not found for both packages, got %v", err)
	}

	if err := repo.Save(ctx, "dayloop:daily", []byte("v1")); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if err := repo.Save(ctx, "dayloop:daily", []byte("v2")); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	got, err := repo.Load(ctx, "dayloop:daily")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestRepositoryBacksPersistContainer(t *testing.T) {
	repo := setupRepo(t)
	type profile struct {
		Name string `json:"name"`
	}
	c, err := persist.Open(context.Background(), repo, persist.Options[profile]{Key: "dayloop:profile"})
	if err != nil {
		t.Fatalf("open container: %v", err)
	}
	if err := c.Set(context.Background(), profile{Name: "sam"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	reopened, err := persist.Open(context.Background(), repo, persist.Options[profile]{Key: "dayloop:profile"})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Get().Name != "sam" {
		t.Fatalf("expected persisted profile, got %+v", reopened.Get())
	}
}

func TestInsertHistoryIsIdempotentAndSorted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first := model.HistoryRecord{
		Date:      "2024-01-01",
		Workout:   model.WorkoutSummary{Count: 1, Duration: 600, Calories: 100},
		Nutrition: model.NutritionSummary{Protein: 90, Water: 6},
		Prayers:   model.PrayerSummary{Total: model.PrayersPerDay},
	}
	inserted, err := repo.InsertHistory(ctx, first)
	if err != nil || !inserted {
		t.Fatalf("first insert = %v, %v", inserted, err)
	}

	dup := first
	dup.Nutrition.Protein = 1
	inserted, err = repo.InsertHistory(ctx, dup)
	if err != nil || inserted {
		t.Fatalf("duplicate insert = %v, %v", inserted, err)
	}

	for _, date := range []string{"2023-12-30", "2024-01-03", "2023-12-31"} {
		if _, err := repo.InsertHistory(ctx, model.HistoryRecord{Date: date}); err != nil {
			t.Fatalf("insert %s: %v", date, err)
		}
	}

	all, err := repo.ListHistory(ctx, HistoryListFilter{})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	want := []string{"2024-01-03", "2024-01-01", "2023-12-31", "2023-12-30"}
	if len(all) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(all))
	}
	for i, rec := range all {
		if rec.Date != want[i] {
			t.Fatalf("record %d date = %s, want %s", i, rec.Date, want[i])
		}
	}

	got, err := repo.GetHistory(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if got.Nutrition.Protein != 90 || got.Workout.Calories != 100 {
		t.Fatalf("original record was overwritten: %+v", got)
	}

	page, err := repo.ListHistory(ctx, HistoryListFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("page history: %v", err)
	}
	if len(page) != 2 || page[0].Date != "2024-01-01" {
		t.Fatalf("unexpected page: %+v", page)
	}

	if _, err := repo.GetHistory(ctx, "1999-01-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.InsertHistory(ctx, model.HistoryRecord{}); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestWorkoutLogRangeQuery(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	logs := []model.WorkoutLog{
		{ID: "w1", PresetID: "upper-a", PresetName: "Upper Body A", StartedAt: parseRFC3339(t, "2024-01-01T07:00:00Z"), DurationSec: 600},
		{ID: "w2", PresetID: "core", PresetName: "Core Express", StartedAt: parseRFC3339(t, "2024-01-01T23:59:59Z"), DurationSec: 300},
		{ID: "w3", PresetID: "core", PresetName: "Core Express", StartedAt: parseRFC3339(t, "2024-01-02T00:00:00Z"), DurationSec: 300},
	}
	for _, l := range logs {
		if err := repo.CreateWorkoutLog(ctx, l); err != nil {
			t.Fatalf("create %s: %v", l.ID, err)
		}
	}

	got, err := repo.ListWorkoutLogs(ctx, WorkoutLogFilter{
		From: parseRFC3339(t, "2024-01-01T00:00:00Z"),
		To:   parseRFC3339(t, "2024-01-02T00:00:00Z"),
	})
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(got) != 2 || got[0].ID != "w1" || got[1].ID != "w2" {
		t.Fatalf("unexpected logs for 2024-01-01: %+v", got)
	}
	if !got[1].StartedAt.Equal(logs[1].StartedAt) || got[1].DurationSec != 300 {
		t.Fatalf("log fields not preserved: %+v", got[1])
	}

	if err := repo.CreateWorkoutLog(ctx, model.WorkoutLog{ID: "bad"}); err == nil {
		t.Fatal("expected validation error for log without start time")
	}
}

func TestCustomPresetCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	p := model.WorkoutPreset{
		ID:        model.CustomPresetPrefix + "1",
		Name:      "Morning",
		Exercises: []model.Exercise{{Name: "Burpees", Sets: 2, Work: 30, Rest: 15}},
	}
	if err := repo.SaveCustomPreset(ctx, p); err != nil {
		t.Fatalf("save preset: %v", err)
	}
	p.Name = "Morning v2"
	if err := repo.SaveCustomPreset(ctx, p); err != nil {
		t.Fatalf("update preset: %v", err)
	}

	got, err := repo.GetCustomPreset(ctx, p.ID)
	if err != nil {
		t.Fatalf("get preset: %v", err)
	}
	if got.Name != "Morning v2" || len(got.Exercises) != 1 {
		t.Fatalf("unexpected preset: %+v", got)
	}

	list, err := repo.ListCustomPresets(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list presets = %+v, %v", list, err)
	}

	if err := repo.SaveCustomPreset(ctx, model.WorkoutPreset{ID: "upper-a", Name: "x"}); err == nil {
		t.Fatal("expected built-in id to be rejected")
	}

	if err := repo.DeleteCustomPreset(ctx, p.ID); err != nil {
		t.Fatalf("delete preset: %v", err)
	}
	if err := repo.DeleteCustomPreset(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := repo.GetCustomPreset(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
