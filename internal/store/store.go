// Package store persists pilot records in SQLite: best sector reached, ore
// hauled and runs flown.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a pilot has no record.
var ErrNotFound = errors.New("pilot not found")

const schema = `
CREATE TABLE IF NOT EXISTS pilots (
	name        TEXT PRIMARY KEY,
	best_sector INTEGER NOT NULL DEFAULT 0,
	total_ore   INTEGER NOT NULL DEFAULT 0,
	runs        INTEGER NOT NULL DEFAULT 0,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS pilots_rank ON pilots (best_sector DESC, total_ore DESC);
`

// Pilot is one leaderboard row.
type Pilot struct {
	Name       string
	BestSector int
	TotalOre   int
	Runs       int
	UpdatedAt  time.Time
}

// Store is a pilot record database. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening pilot store: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY across sessions and
	// keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring pilot store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating pilot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSector credits a cleared sector and the ore hauled in it.
func (s *Store) RecordSector(ctx context.Context, name string, sector, ore int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pilots (name, best_sector, total_ore, runs, updated_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT(name) DO UPDATE SET
			best_sector = MAX(best_sector, excluded.best_sector),
			total_ore   = total_ore + excluded.total_ore,
			updated_at  = excluded.updated_at`,
		name, sector, ore, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("recording sector for %s: %w", name, err)
	}
	return nil
}

// RecordRun counts a finished run and the ore hauled in its last sector.
func (s *Store) RecordRun(ctx context.Context, name string, ore int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pilots (name, best_sector, total_ore, runs, updated_at)
		VALUES (?, 0, ?, 1, ?)
		ON CONFLICT(name) DO UPDATE SET
			total_ore  = total_ore + excluded.total_ore,
			runs       = runs + 1,
			updated_at = excluded.updated_at`,
		name, ore, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("recording run for %s: %w", name, err)
	}
	return nil
}

// Get returns the record of one pilot.
func (s *Store) Get(ctx context.Context, name string) (Pilot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, best_sector, total_ore, runs, updated_at FROM pilots WHERE name = ?`, name)
	p, err := scanPilot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Pilot{}, ErrNotFound
	}
	if err != nil {
		return Pilot{}, fmt.Errorf("loading pilot %s: %w", name, err)
	}
	return p, nil
}

// Top returns up to n pilots ranked by best sector, then ore hauled.
func (s *Store) Top(ctx context.Context, n int) ([]Pilot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, best_sector, total_ore, runs, updated_at FROM pilots
		ORDER BY best_sector DESC, total_ore DESC, name ASC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	defer rows.Close()

	var pilots []Pilot
	for rows.Next() {
		p, err := scanPilot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning leaderboard: %w", err)
		}
		pilots = append(pilots, p)
	}
	return pilots, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPilot(sc scanner) (Pilot, error) {
	var p Pilot
	var updated int64
	if err := sc.Scan(&p.Name, &p.BestSector, &p.TotalOre, &p.Runs, &updated); err != nil {
		return Pilot{}, err
	}
	p.UpdatedAt = time.Unix(updated, 0)
	return p, nil
}
