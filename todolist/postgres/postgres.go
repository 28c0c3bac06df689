// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package postgres provides a [todolist.Store] persisted in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/z5labs/todo/todolist"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IDs are stored bit-cast to int64 so the full uint64 id space fits in a
// BIGINT column.
const schema = `
CREATE TABLE IF NOT EXISTS todo_lists (
	id BIGINT PRIMARY KEY,
	title TEXT NOT NULL,
	entries JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS todo_list_sequence (
	singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	next_id BIGINT NOT NULL
);
INSERT INTO todo_list_sequence (singleton, next_id) VALUES (TRUE, 0) ON CONFLICT DO NOTHING;
`

// Store is a PostgreSQL backed [todolist.Store].
type Store struct {
	pool *pgxpool.Pool
}

var _ todolist.Store = (*Store)(nil)

// Open connects to the database identified by dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	_, err = pool.Exec(ctx, schema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize postgres schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes every connection in the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Healthy implements the health.Monitor interface.
func (s *Store) Healthy(ctx context.Context) (bool, error) {
	err := s.pool.Ping(ctx)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create implements the [todolist.Store] interface.
//
// The sequence row is locked for the remainder of the transaction so
// concurrent creators serialize on it.
func (s *Store) Create(ctx context.Context, l todolist.List) (todolist.ID, error) {
	entries, err := json.Marshal(l.Entries)
	if err != nil {
		return 0, fmt.Errorf("failed to encode entries: %w", err)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var next int64
	err = tx.QueryRow(ctx, `SELECT next_id FROM todo_list_sequence WHERE singleton FOR UPDATE`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to read id sequence: %w", err)
	}

	id := todolist.ID(uint64(next))
	if id == todolist.MaxID {
		return 0, todolist.ErrExhausted
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO todo_lists (id, title, entries) VALUES ($1, $2, $3)`,
		int64(id),
		l.Title,
		entries,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert todo list: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE todo_list_sequence SET next_id = $1 WHERE singleton`, int64(id+1))
	if err != nil {
		return 0, fmt.Errorf("failed to advance id sequence: %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to commit todo list: %w", err)
	}
	return id, nil
}

// Get implements the [todolist.Store] interface.
func (s *Store) Get(ctx context.Context, id todolist.ID) (todolist.List, error) {
	var (
		title   string
		entries []byte
	)
	err := s.pool.QueryRow(
		ctx,
		`SELECT title, entries FROM todo_lists WHERE id = $1`,
		int64(id),
	).Scan(&title, &entries)
	if errors.Is(err, pgx.ErrNoRows) {
		return todolist.List{}, todolist.NotFoundError{ID: id}
	}
	if err != nil {
		return todolist.List{}, fmt.Errorf("failed to query todo list: %w", err)
	}

	l := todolist.List{Title: title}
	err = json.Unmarshal(entries, &l.Entries)
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

	tag, err := s.pool.Exec(
		ctx,
		`UPDATE todo_lists SET title = $1, entries = $2 WHERE id = $3`,
		l.Title,
		entries,
		int64(id),
	)
	if err != nil {
		return fmt.Errorf("failed to update todo list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return todolist.NotFoundError{ID: id}
	}
	return nil
}

// Delete implements the [todolist.Store] interface.
func (s *Store) Delete(ctx context.Context, id todolist.ID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM todo_lists WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete todo list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return todolist.NotFoundError{ID: id}
	}
	return nil
}
