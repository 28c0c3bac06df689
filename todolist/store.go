// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package todolist

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an [ID] does not reference a live list.
var ErrNotFound = errors.New("todo list not found")

// ErrExhausted is returned by [Store.Create] once every [ID] has been allocated.
var ErrExhausted = errors.New("todo list id space exhausted")

// NotFoundError reports which [ID] could not be found.
// It matches [ErrNotFound] with [errors.Is].
type NotFoundError struct {
	ID ID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("todo list %s not found", e.ID)
}

// Is reports whether target is [ErrNotFound].
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Store is the CRUD contract over [List] records.
//
// Implementations must be safe for concurrent use and must treat every
// operation as a single atomic update of their id to list mapping.
type Store interface {
	// Create stores a copy of l under a newly allocated [ID].
	// IDs start at 0 and strictly increase. Once the id space is exhausted
	// Create fails with [ErrExhausted] without modifying the store.
	Create(ctx context.Context, l List) (ID, error)

	// Get returns a copy of the list stored under id or [ErrNotFound].
	Get(ctx context.Context, id ID) (List, error)

	// Update replaces the list stored under id with a copy of l.
	// It never creates a record; a missing id fails with [ErrNotFound].
	Update(ctx context.Context, id ID, l List) error

	// Delete removes the list stored under id or fails with [ErrNotFound].
	Delete(ctx context.Context, id ID) error
}
