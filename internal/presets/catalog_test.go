package presets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/storage"
)

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "presets-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return NewCatalog(repo)
}

func TestBuiltInPresetsAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range BuiltIn() {
		if err := p.Validate(); err != nil {
			t.Fatalf("built-in %s invalid: %v", p.ID, err)
		}
		if p.IsCustom() {
			t.Fatalf("built-in %s uses the custom prefix", p.ID)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate built-in id %s", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestBuiltInReturnsCopies(t *testing.T) {
	first := BuiltIn()
	first[0].Exercises[0].Name = "mutated"
	if BuiltIn()[0].Exercises[0].Name == "mutated" {
		t.Fatal("BuiltIn exposes shared exercise storage")
	}
}

func TestCopyCreatesEditableCustomPreset(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	cp, err := c.Copy(ctx, "upper-body-a")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if !cp.IsCustom() || cp.Name != "Upper Body A (copy)" {
		t.Fatalf("unexpected copy: %+v", cp)
	}

	cp.Exercises[0].Sets = 5
	if err := c.Save(ctx, cp); err != nil {
		t.Fatalf("save edited copy: %v", err)
	}
	got, err := c.Get(ctx, cp.ID)
	if err != nil || got.Exercises[0].Sets != 5 {
		t.Fatalf("get copy = %+v, %v", got, err)
	}
	original, _ := c.Get(ctx, "upper-body-a")
	if original.Exercises[0].Sets != 3 {
		t.Fatal("editing the copy changed the built-in")
	}

	all, err := c.List(ctx)
	if err != nil || len(all) != len(BuiltIn())+1 {
		t.Fatalf("list = %d presets, %v", len(all), err)
	}
}

func TestBuiltInsAreImmutable(t *testing.T) {
	c := setupCatalog(t)
	p, _ := c.Get(context.Background(), "core-express")
	p.Name = "Edited"
	if err := c.Save(context.Background(), p); !errors.Is(err, ErrImmutablePreset) {
		t.Fatalf("expected ErrImmutablePreset on save, got %v", err)
	}
	if err := c.Delete(context.Background(), "core-express"); !errors.Is(err, ErrImmutablePreset) {
		t.Fatalf("expected ErrImmutablePreset on delete, got %v", err)
	}
	if err := c.Delete(context.Background(), model.CustomPresetPrefix+"missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestForRoutine(t *testing.T) {
	c := setupCatalog(t)
	p, err := c.ForRoutine(context.Background(), model.RoutineB)
	if err != nil || p.ID != "lower-body-b" {
		t.Fatalf("ForRoutine(B) = %s, %v", p.ID, err)
	}
}

func TestImportJSONC(t *testing.T) {
	c := setupCatalog(t)
	path := filepath.Join(t.TempDir(), "mine.jsonc")
	doc := `[
		// quick morning circuit
		{
			"name": "Morning",
			"icon": "☀️",
			"exercises": [
				{"name": "Jumping Jacks", "sets": 2, "work": 30, "rest": 10,},
			],
		},
		/* imported ids keep the custom prefix */
		{"id": "custom-keep", "name": "Keep", "exercises": [{"name": "Plank", "sets": 1, "work": 60, "rest": 0}]},
	]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	imported, err := c.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(imported))
	}
	if !strings.HasPrefix(imported[0].ID, model.CustomPresetPrefix) || imported[1].ID != "custom-keep" {
		t.Fatalf("unexpected ids: %s, %s", imported[0].ID, imported[1].ID)
	}
	if _, err := c.Get(context.Background(), "custom-keep"); err != nil {
		t.Fatalf("imported preset not stored: %v", err)
	}
}

func TestImportRejectsInvalidWithoutSaving(t *testing.T) {
	c := setupCatalog(t)
	path := filepath.Join(t.TempDir(), "bad.jsonc")
	doc := `[{"id": "custom-ok", "name": "OK", "exercises": [{"name": "A", "sets": 1, "work": 5}]},
	         {"id": "custom-bad", "name": "Bad", "exercises": []}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := c.Import(context.Background(), path); !errors.Is(err, model.ErrInvalidPreset) {
		t.Fatalf("expected ErrInvalidPreset, got %v", err)
	}
	if _, err := c.Get(context.Background(), "custom-ok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("partial import was saved: %v", err)
	}
}

func TestImportNeverOverwritesExistingPresets(t *testing.T) {
	c := setupCatalog(t)
	mine, err := c.Copy(context.Background(), "core-express")
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	path := filepath.Join(t.TempDir(), "clash.jsonc")
	doc := `[
		{"id": "` + mine.ID + `", "name": "Clash", "exercises": [{"name": "A", "sets": 1, "work": 5}]},
		{"id": "custom-twin", "name": "Twin 1", "exercises": [{"name": "B", "sets": 1, "work": 5}]},
		{"id": "custom-twin", "name": "Twin 2", "exercises": [{"name": "C", "sets": 1, "work": 5}]},
	]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	imported, err := c.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported[0].ID == mine.ID || imported[1].ID != "custom-twin" || imported[2].ID == "custom-twin" {
		t.Fatalf("unexpected ids: %s, %s, %s", imported[0].ID, imported[1].ID, imported[2].ID)
	}
	kept, err := c.Get(context.Background(), mine.ID)
	if err != nil || kept.Name != mine.Name {
		t.Fatalf("existing preset overwritten: %+v, %v", kept, err)
	}
	all, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := len(BuiltIn()) + 4; len(all) != want {
		t.Fatalf("expected %d presets, got %d", want, len(all))
	}
}

func TestParseSingleObject(t *testing.T) {
	got, err := Parse([]byte(`{"id": "custom-1", "name": "Solo", "exercises": [{"name": "A", "sets": 1, "work": 5}]} // trailing`))
	if err != nil || len(got) != 1 || got[0].Name != "Solo" {
		t.Fatalf("Parse = %+v, %v", got, err)
	}
	if _, err := Parse([]byte("  // only a comment\n")); err == nil {
		t.Fatal("expected error for empty document")
	}
}
