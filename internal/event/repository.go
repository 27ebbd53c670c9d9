package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is the durable event store the rest of the application reads
// from and writes to.
type Store interface {
	Insert(ctx context.Context, e Event) error
	Update(ctx context.Context, e Event) error
	Delete(ctx context.Context, id string) error
	// MostRecentOpen returns the newest event if it is still running.
	MostRecentOpen(ctx context.Context) (Event, bool, error)
	// GetAll returns every event, newest first.
	GetAll(ctx context.Context) ([]Event, error)
}

// Repository is a Store backed by a sqlite database file.
type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway; one connection keeps :memory: usable
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *Repository) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_time INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		CHECK (end_time >= start_time)
	)
	`
	if _, err := r.db.Exec(query); err != nil {
		return err
	}

	_, err := r.db.Exec("CREATE INDEX IF NOT EXISTS idx_events_start_time ON events (start_time DESC)")
	return err
}

func (r *Repository) Insert(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO events (id, name, start_time, end_time) VALUES (?, ?, ?, ?)",
		e.ID, e.Name, e.StartTime, e.EndTime,
	)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx,
		"UPDATE events SET name = ?, start_time = ?, end_time = ? WHERE id = ?",
		e.Name, e.StartTime, e.EndTime, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event %s: %w", e.ID, err)
	}
	return requireAffected(result, e.ID)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return requireAffected(result, id)
}

func (r *Repository) MostRecentOpen(ctx context.Context) (Event, bool, error) {
	var e Event
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, start_time, end_time FROM events ORDER BY start_time DESC, rowid DESC LIMIT 1",
	).Scan(&e.ID, &e.Name, &e.StartTime, &e.EndTime)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, fmt.Errorf("query most recent event: %w", err)
	}
	if !e.Running() {
		return Event{}, false, nil
	}
	return e, true, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, start_time, end_time FROM events ORDER BY start_time DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Name, &e.StartTime, &e.EndTime); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}
