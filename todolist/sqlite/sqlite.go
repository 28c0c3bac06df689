// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sqlite provides a [todolist.Store] persisted in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/z5labs/todo/todolist"

	_ "modernc.org/sqlite"
)

// IDs are stored bit-cast to int64 so the full uint64 id space fits in a
// SQLite INTEGER column.
const schema = `
CREATE TABLE IF NOT EXISTS todo_lists (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	entries TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS todo_list_sequence (
	singleton INTEGER PRIMARY KEY CHECK (singleton = 0),
	next_id INTEGER NOT NULL
);
INSERT OR IGNORE INTO todo_list_sequence (singleton, next_id) VALUES (0, 0);
`

// Store is a SQLite backed [todolist.Store].
type Store struct {
	db *sql.DB
}

var _ todolist.Store = (*Store)(nil)

// Open opens, and if needed initializes, the SQLite database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single connection serializes every operation, including the
	// read-increment-insert sequence in Create.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Healthy implements the health.Monitor interface.
func (s *Store) Healthy(ctx context.Context) (bool, error) {
	err := s.db.PingContext(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create implements the [todolist.Store] interface.
func (s *Store) Create(ctx context.Context, l todolist.List) (todolist.ID, error) {
	entries, err := json.Marshal(l.Entries)
	if err != nil {
		return 0, fmt.Errorf("failed to encode entries: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int64
	err = tx.QueryRowContext(ctx, `SELECT next_id FROM todo_list_sequence WHERE singleton = 0`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to read id sequence: %w", err)
	}

	id := todolist.ID(uint64(next))
	if id == todolist.MaxID {
		return 0, todolist.ErrExhausted
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO todo_lists (id, title, entries) VALUES (?, ?, ?)`,
		int64(id),
		l.Title,
		string(entries),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert todo list: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE todo_list_sequence SET next_id = ? WHERE singleton = 0`, int64(id+1))
	if err != nil {
		return 0, fmt.Errorf("failed to advance id sequence: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit todo list: %w", err)
	}
	return id, nil
}

// Get implements the [todolist.Store] interface.
func (s *Store) Get(ctx context.Context, id todolist.ID) (todolist.List, error) {
	var (
		title   string
		entries string
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT title, entries FROM todo_lists WHERE id = ?`,
		int64(id),
	).Scan(&title, &entries)
	if errors.Is(err, sql.ErrNoRows) {
		return todolist.List{}, todolist.NotFoundError{ID: id}
	}
	if err != nil {
		return todolist.List{}, fmt.Errorf("failed to query todo list: %w", err)
	}

	l := todolist.List{Title: title}
	err = json.Unmarshal([]byte(entries), &l.Entries)
	if err != nil {
		return todolist.List{}, fmt.Errorf("failed to decode entries: %w", err)
	}
	return l, nil
}

// Update implements the [todolist.Store] interface.
func (s *Store) Update(ctx context.Context, id todolist.ID, l todolist.List) error {
	entries, err := json.Marshal(l.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	res, err := s.db.ExecContext(
		ctx,
		`UPDATE todo_lists SET title = ?, entries = ? WHERE id = ?`,
		l.Title,
		string(entries),
		int64(id),
	)
	if err != nil {
		return fmt.Errorf("failed to update todo list: %w", err)
	}
	return requireAffected(res, id)
}

// Delete implements the [todolist.Store] interface.
func (s *Store) Delete(ctx context.Context, id todolist.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todo_lists WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete todo list: %w", err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id todolist.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return todolist.NotFoundError{ID: id}
	}
	return nil
}
