// Package history records shortcut launches in a local SQLite database and
// answers recency and frequency queries for the UI.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS launches (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	shortcut_id  TEXT NOT NULL,
	name         TEXT NOT NULL,
	target       TEXT NOT NULL,
	source       TEXT NOT NULL,
	launched_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_launches_shortcut ON launches(shortcut_id);
CREATE INDEX IF NOT EXISTS idx_launches_time ON launches(launched_at);
`

// Launch sources recorded with each entry.
const (
	SourceUI     = "ui"
	SourceHotkey = "hotkey"
	SourceIPC    = "ipc"
)

// Entry is one recorded launch.
type Entry struct {
	ShortcutID string    `json:"shortcut_id"`
	Name       string    `json:"name"`
	Target     string    `json:"target"`
	Source     string    `json:"source"`
	LaunchedAt time.Time `json:"launched_at"`
}

// Usage aggregates launch counts per shortcut.
type Usage struct {
	ShortcutID string    `json:"shortcut_id"`
	Name       string    `json:"name"`
	Count      int       `json:"count"`
	LastLaunch time.Time `json:"last_launch"`
}

// Store wraps the launch-history database. Methods are safe for concurrent
// use; database/sql serializes access.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database and ensures the schema is at
// the current version.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("open history: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open history: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	ver, err := currentSchemaVersion(db)
	if err != nil {
		return fmt.Errorf("check schema version: %w", err)
	}
	if ver >= schemaVersion {
		return nil
	}
	if _, err := db.Exec(schemaV1); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec("DELETE FROM schema_meta"); err != nil {
		return err
	}
	if _, err := db.Exec("INSERT INTO schema_meta (version) VALUES (?)", schemaVersion); err != nil {
		return err
	}
	return nil
}

// currentSchemaVersion returns the version from schema_meta, or 0 for a
// fresh database.
func currentSchemaVersion(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_meta'
	`).Scan(&count)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	var ver int
	err = db.QueryRow("SELECT version FROM schema_meta LIMIT 1").Scan(&ver)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Record inserts one launch. History is best-effort: callers log failures
// but never fail the launch itself over them.
func (s *Store) Record(ctx context.Context, e Entry) error {
	at := e.LaunchedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launches (shortcut_id, name, target, source, launched_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ShortcutID, e.Name, e.Target, e.Source, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record launch: %w", err)
	}
	return nil
}

// Recent returns the most recent launches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT shortcut_id, name, target, source, launched_at
		FROM launches
		ORDER BY launched_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent launches: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ShortcutID, &e.Name, &e.Target, &e.Source, &at); err != nil {
			return nil, fmt.Errorf("recent launches: scan: %w", err)
		}
		e.LaunchedAt = parseLaunchTime(at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// MostUsed returns shortcuts ranked by launch count, ties broken by most
// recent launch.
func (s *Store) MostUsed(ctx context.Context, limit int) ([]Usage, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT shortcut_id, MAX(name), COUNT(*) AS launches, MAX(launched_at) AS last_launch
		FROM launches
		GROUP BY shortcut_id
		ORDER BY launches DESC, last_launch DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("most used: %w", err)
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		var at string
		if err := rows.Scan(&u.ShortcutID, &u.Name, &u.Count, &at); err != nil {
			return nil, fmt.Errorf("most used: scan: %w", err)
		}
		u.LastLaunch = parseLaunchTime(at)
		out = append(out, u)
	}
	return out, rows.Err()
}

// Prune deletes entries older than the retention window. days <= 0 disables
// pruning.
func (s *Store) Prune(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, "DELETE FROM launches WHERE launched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	if n > 0 {
		slog.Debug("[history] pruned old launches", "removed", n, "retentionDays", days)
	}
	return n, nil
}

// Forget removes all history for one shortcut. Called when the shortcut is
// deleted so stale IDs do not linger in usage rankings.
func (s *Store) Forget(ctx context.Context, shortcutID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM launches WHERE shortcut_id = ?", shortcutID); err != nil {
		return fmt.Errorf("forget shortcut history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func parseLaunchTime(raw string) time.Time {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts
	}
	// datetime('now') default from older rows.
	if ts, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}
