package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/dayloop/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// startedAtLayout is fixed width so started_at compares correctly as text.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens path, applies migrations and returns a ready repository.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM kv_store WHERE key = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errKeyNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, payload, mustTime(time.Now()),
	)
	return err
}

// InsertHistory stores rec unless a record for rec.Date already exists.
// It reports whether a row was written.
func (r *SQLiteRepository) InsertHistory(ctx context.Context, rec model.HistoryRecord) (bool, error) {
	if strings.TrimSpace(rec.Date) == "" {
		return false, errors.New("storage: history record date is required")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode history %s: %w", rec.Date, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM history_records WHERE date = ?`, rec.Date).Scan(&exists)
	switch {
	case err == nil:
		return false, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO history_records (date, payload, created_at) VALUES (?, ?, ?)`,
		rec.Date, payload, mustTime(time.Now()),
	); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *SQLiteRepository) GetHistory(ctx context.Context, date string) (model.HistoryRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT payload FROM history_records WHERE date = ?`, date)
	rec, err := scanHistory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.HistoryRecord{}, ErrNotFound
		}
		return model.HistoryRecord{}, err
	}
	return rec, nil
}

// ListHistory returns records newest first.
func (r *SQLiteRepository) ListHistory(ctx context.Context, filter HistoryListFilter) ([]model.HistoryRecord, error) {
	query := `SELECT payload FROM history_records ORDER BY date DESC`
	args := make([]any, 0, 2)
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.HistoryRecord, 0)
	for rows.Next() {
		rec, scanErr := scanHistory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateWorkoutLog(ctx context.Context, in model.WorkoutLog) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workout_logs (id, preset_id, preset_name, started_at, duration_sec)
		VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.PresetID, in.PresetName, in.StartedAt.UTC().Format(startedAtLayout), in.DurationSec,
	)
	return err
}

// ListWorkoutLogs returns matching logs oldest first.
func (r *SQLiteRepository) ListWorkoutLogs(ctx context.Context, filter WorkoutLogFilter) ([]model.WorkoutLog, error) {
	query := `SELECT id, preset_id, preset_name, started_at, duration_sec FROM workout_logs`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if !filter.From.IsZero() {
		clauses = append(clauses, `started_at >= ?`)
		args = append(args, filter.From.UTC().Format(startedAtLayout))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, `started_at < ?`)
		args = append(args, filter.To.UTC().Format(startedAtLayout))
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY started_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.WorkoutLog, 0)
	for rows.Next() {
		item, scanErr := scanWorkoutLog(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// SaveCustomPreset inserts or replaces a user-authored preset.
func (r *SQLiteRepository) SaveCustomPreset(ctx context.Context, in model.WorkoutPreset) error {
	if !in.IsCustom() {
		return fmt.Errorf("storage: preset %q is not custom", in.ID)
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode preset %s: %w", in.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO custom_presets (id, name, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, payload = excluded.payload, updated_at = excluded.updated_at`,
		in.ID, in.Name, payload, mustTime(time.Now()),
	)
	return err
}

func (r *SQLiteRepository) GetCustomPreset(ctx context.Context, id string) (model.WorkoutPreset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT payload FROM custom_presets WHERE id = ?`, id)
	p, err := scanPreset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.WorkoutPreset{}, ErrNotFound
		}
		return model.WorkoutPreset{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) DeleteCustomPreset(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_presets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListCustomPresets(ctx context.Context) ([]model.WorkoutPreset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM custom_presets ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.WorkoutPreset, 0)
	for rows.Next() {
		p, scanErr := scanPreset(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(s scanner) (model.HistoryRecord, error) {
	var payload []byte
	if err := s.Scan(&payload); err != nil {
		return model.HistoryRecord{}, err
	}
	var out model.HistoryRecord
	if err := json.Unmarshal(payload, &out); err != nil {
		return model.HistoryRecord{}, fmt.Errorf("decode history: %w", err)
	}
	return out, nil
}

func scanWorkoutLog(s scanner) (model.WorkoutLog, error) {
	var out model.WorkoutLog
	var started string
	if err := s.Scan(&out.ID, &out.PresetID, &out.PresetName, &started, &out.DurationSec); err != nil {
		return model.WorkoutLog{}, err
	}
	startedAt, err := time.Parse(startedAtLayout, started)
	if err != nil {
		return model.WorkoutLog{}, err
	}
	out.StartedAt = startedAt
	return out, nil
}

func scanPreset(s scanner) (model.WorkoutPreset, error) {
	var payload []byte
	if err := s.Scan(&payload); err != nil {
		return model.WorkoutPreset{}, err
	}
	var out model.WorkoutPreset
	if err := json.Unmarshal(payload, &out); err != nil {
		return model.WorkoutPreset{}, fmt.Errorf("decode preset: %w", err)
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
