// Package presets serves the built-in workout presets together with the
// user's custom ones. Built-ins are read-only; Copy produces an editable
// custom preset.
package presets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"

	"github.com/sandeepkv93/dayloop/internal/model"
	"github.com/sandeepkv93/dayloop/internal/storage"
)

var (
	ErrNotFound        = errors.New("presets: not found")
	ErrImmutablePreset = errors.New("presets: built-in presets cannot be modified")
)

type Store interface {
	SaveCustomPreset(ctx context.Context, in model.WorkoutPreset) error
	GetCustomPreset(ctx context.Context, id string) (model.WorkoutPreset, error)
	DeleteCustomPreset(ctx context.Context, id string) error
	ListCustomPresets(ctx context.Context) ([]model.WorkoutPreset, error)
}

type Catalog struct {
	store Store
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

// List returns built-ins first, then custom presets by name.
func (c *Catalog) List(ctx context.Context) ([]model.WorkoutPreset, error) {
	out := BuiltIn()
	custom, err := c.store.ListCustomPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom presets: %w", err)
	}
	return append(out, custom...), nil
}

func (c *Catalog) Get(ctx context.Context, id string) (model.WorkoutPreset, error) {
	if p, ok := builtinByID(id); ok {
		return p, nil
	}
	p, err := c.store.GetCustomPreset(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return model.WorkoutPreset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, err
}

// ForRoutine returns the first preset tagged with r.
func (c *Catalog) ForRoutine(ctx context.Context, r model.Routine) (model.WorkoutPreset, error) {
	all, err := c.List(ctx)
	if err != nil {
		return model.WorkoutPreset{}, err
	}
	for _, p := range all {
		if p.Routine == r {
			return p, nil
		}
	}
	return model.WorkoutPreset{}, fmt.Errorf("%w: routine %q", ErrNotFound, r)
}

// Copy duplicates any preset into a new custom one.
func (c *Catalog) Copy(ctx context.Context, id string) (model.WorkoutPreset, error) {
	src, err := c.Get(ctx, id)
	if err != nil {
		return model.WorkoutPreset{}, err
	}
	cp := src.Clone()
	cp.ID = newCustomID()
	cp.Name = src.Name + " (copy)"
	if err := c.Save(ctx, cp); err != nil {
		return model.WorkoutPreset{}, err
	}
	return cp, nil
}

func (c *Catalog) Save(ctx context.Context, p model.WorkoutPreset) error {
	if !p.IsCustom() {
		return fmt.Errorf("%w: %s", ErrImmutablePreset, p.ID)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return c.store.SaveCustomPreset(ctx, p)
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	if !strings.HasPrefix(id, model.CustomPresetPrefix) {
		return fmt.Errorf("%w: %s", ErrImmutablePreset, id)
	}
	err := c.store.DeleteCustomPreset(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// Import reads a JSONC file holding one preset or an array of them and
// saves each as a custom preset. Nothing is saved unless every preset is
// valid. A custom id is kept only while it names no stored preset and no
// earlier entry in the file; otherwise the preset gets a fresh id.
func (c *Catalog) Import(ctx context.Context, path string) ([]model.WorkoutPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	parsed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	existing, err := c.store.ListCustomPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom presets: %w", err)
	}
	taken := make(map[string]bool, len(existing)+len(parsed))
	for _, p := range existing {
		taken[p.ID] = true
	}
	for i := range parsed {
		if !parsed[i].IsCustom() || taken[parsed[i].ID] {
			parsed[i].ID = newCustomID()
		}
		taken[parsed[i].ID] = true
		if err := parsed[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: preset %d: %w", path, i, err)
		}
	}
	for _, p := range parsed {
		if err := c.store.SaveCustomPreset(ctx, p); err != nil {
			return nil, fmt.Errorf("save %s: %w", p.ID, err)
		}
	}
	return parsed, nil
}

// Parse strips JSONC comments and trailing commas, then decodes either a
// single preset object or an array of presets.
func Parse(data []byte) ([]model.WorkoutPreset, error) {
	stripped := bytes.TrimSpace(jsonc.ToJSON(data))
	if len(stripped) == 0 {
		return nil, errors.New("parsing presets: empty document")
	}
	if stripped[0] == '[' {
		var out []model.WorkoutPreset
		if err := json.Unmarshal(stripped, &out); err != nil {
			return nil, fmt.Errorf("parsing presets: %w", err)
		}
		return out, nil
	}
	var one model.WorkoutPreset
	if err := json.Unmarshal(stripped, &one); err != nil {
		return nil, fmt.Errorf("parsing preset: %w", err)
	}
	return []model.WorkoutPreset{one}, nil
}

func newCustomID() string {
	return model.CustomPresetPrefix + uuid.NewString()
}
