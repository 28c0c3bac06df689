// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package memory provides an in-memory [todolist.Store].
package memory

import (
	"context"
	"sync"

	"github.com/z5labs/todo/todolist"
)

// Option configures a [Store].
type Option func(*Store)

// StartingAt sets the first [todolist.ID] the store will allocate.
func StartingAt(id todolist.ID) Option {
	return func(s *Store) {
		s.next = id
	}
}

// Store is a map backed [todolist.Store].
//
// Every operation holds one exclusive lock for its full duration,
// including reads. The zero value is not usable; use [New].
type Store struct {
	mu    sync.Mutex
	next  todolist.ID
	lists map[todolist.ID]todolist.List
}

var _ todolist.Store = (*Store)(nil)

// New initializes an empty [Store] which allocates ids starting at 0.
func New(opts ...Option) *Store {
	s := &Store{
		lists: make(map[todolist.ID]todolist.List),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create implements the [todolist.Store] interface.
func (s *Store) Create(ctx context.Context, l todolist.List) (todolist.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	if id == todolist.MaxID {
		return 0, todolist.ErrExhausted
	}
	s.next++
	s.lists[id] = l.Clone()
	return id, nil
}

// Get implements the [todolist.Store] interface.
func (s *Store) Get(ctx context.Context, id todolist.ID) (todolist.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[id]
	if !ok {
		return todolist.List{}, todolist.NotFoundError{ID: id}
	}
	return l.Clone(), nil
}

// Update implements the [todolist.Store] interface.
func (s *Store) Update(ctx context.Context, id todolist.ID, l todolist.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[id]; !ok {
		return todolist.NotFoundError{ID: id}
	}
	s.lists[id] = l.Clone()
	return nil
}

// Delete implements the [todolist.Store] interface.
func (s *Store) Delete(ctx context.Context, id todolist.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[id]; !ok {
		return todolist.NotFoundError{ID: id}
	}
	delete(s.lists, id)
	return nil
}

// Len returns the number of live lists.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.lists)
}

// Healthy implements the health.Monitor interface. An in-memory store is
// always ready to serve.
func (s *Store) Healthy(ctx context.Context) (bool, error) {
	return true, nil
}
