package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPrayer     = errors.New("model: invalid prayer")
	ErrInvalidPrayerType = errors.New("model: invalid prayer type")
)

// PrayersPerDay is the fixed denominator used in history records.
const PrayersPerDay = 5

var DailyPrayers = []string{"fajr", "dhuhr", "asr", "maghrib", "isha"}

func IsDailyPrayer(id string) bool {
	for _, p := range DailyPrayers {
		if p == id {
			return true
		}
	}
	return false
}

type PrayerType string

const (
	PrayerAlone PrayerType = "alone"
	PrayerJamat PrayerType = "jamat"
)

func (p PrayerType) IsValid() bool {
	switch p {
	case PrayerAlone, PrayerJamat:
		return true
	default:
		return false
	}
}

// PrayerStatus records one completed prayer. Older data stored the list
// as bare id strings; those decode with an empty Type and zero
// CompletedAt and are fixed up by the daily tracker's normalization.
type PrayerStatus struct {
	ID          string     `json:"id"`
	Type        PrayerType `json:"type"`
	CompletedAt time.Time  `json:"completedAt"`
}

func (p PrayerStatus) IsLegacy() bool {
	return p.Type == ""
}

func (p *PrayerStatus) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return err
		}
		*p = PrayerStatus{ID: id}
		return nil
	}
	type plain PrayerStatus
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return err
	}
	*p = PrayerStatus(out)
	return nil
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if t.Done && t.CompletedAt == nil {
		return errors.New("model: completed_at is required when task is done")
	}
	if !t.Done && t.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when task is not done")
	}
	return nil
}

type NonNegotiable struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

type Protein struct {
	Current int `json:"current"`
	Goal    int `json:"goal"`
}

type Hydration struct {
	Glasses int `json:"glasses"`
	Goal    int `json:"goal"`
}

type Mindfulness struct {
	Minutes int `json:"minutes"`
	Goal    int `json:"goal"`
}

// DailyState is the single mutable record for the current calendar day.
type DailyState struct {
	Date           string          `json:"date"`
	Tasks          []Task          `json:"tasks"`
	Protein        Protein         `json:"protein"`
	Hydration      Hydration       `json:"hydration"`
	Mindfulness    Mindfulness     `json:"mindfulness"`
	NonNegotiables []NonNegotiable `json:"nonNegotiables"`
	ActiveRoutine  Routine         `json:"activeRoutine"`
	Prayers        []PrayerStatus  `json:"prayers"`
}

// Clone copies the slices so a caller can mutate the result without
// touching the container's live value.
func (d DailyState) Clone() DailyState {
	out := d
	out.Tasks = append([]Task(nil), d.Tasks...)
	out.NonNegotiables = append([]NonNegotiable(nil), d.NonNegotiables...)
	out.Prayers = append([]PrayerStatus(nil), d.Prayers...)
	return out
}

func (d DailyState) Validate() error {
	if _, err := time.Parse("2006-01-02", d.Date); err != nil {
		return fmt.Errorf("model: daily state date %q: %w", d.Date, err)
	}
	if !d.ActiveRoutine.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRoutine, d.ActiveRoutine)
	}
	for _, t := range d.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(d.Prayers))
	for _, p := range d.Prayers {
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate %q", ErrInvalidPrayer, p.ID)
		}
		seen[p.ID] = true
		if !p.Type.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidPrayerType, p.Type)
		}
	}
	return nil
}

type WorkoutSummary struct {
	Count    int `json:"count"`
	Duration int `json:"duration"`
	Calories int `json:"calories"`
}

type NutritionSummary struct {
	Protein int `json:"protein"`
	Water   int `json:"water"`
}

type MindfulnessSummary struct {
	Minutes int `json:"minutes"`
}

type PrayerSummary struct {
	Completed []PrayerStatus `json:"completed"`
	Total     int            `json:"total"`
}

// HistoryRecord is an immutable snapshot of one archived day.
type HistoryRecord struct {
	Date        string             `json:"date"`
	Workout     WorkoutSummary     `json:"workout"`
	Nutrition   NutritionSummary   `json:"nutrition"`
	Mindfulness MindfulnessSummary `json:"mindfulness"`
	Prayers     PrayerSummary      `json:"prayers"`
}
