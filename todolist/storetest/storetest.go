// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package storetest provides a conformance suite for [todolist.Store]
// implementations.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/z5labs/todo/todolist"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// NewStoreFunc returns a fresh, empty store for a single subtest.
type NewStoreFunc func(t *testing.T) todolist.Store

// Run exercises every behaviour of the [todolist.Store] contract against
// stores returned by newStore. Each subtest receives its own store.
func Run(t *testing.T, newStore NewStoreFunc) {
	t.Run("Create", func(t *testing.T) {
		t.Run("will allocate ids starting at zero in strictly increasing order", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			for i := range 5 {
				id, err := s.Create(ctx, todolist.List{Title: fmt.Sprintf("list-%d", i)})
				require.NoError(t, err)
				require.Equal(t, todolist.ID(i), id)
			}
		})

		t.Run("will never reuse an id after it is deleted", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			first, err := s.Create(ctx, todolist.List{Title: "first"})
			require.NoError(t, err)
			require.NoError(t, s.Delete(ctx, first))

			second, err := s.Create(ctx, todolist.List{Title: "second"})
			require.NoError(t, err)
			require.Greater(t, second, first)
		})

		t.Run("will store an independent copy of the list", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			l := todolist.List{
				Title: "groceries",
				Entries: []todolist.Entry{
					{Text: "milk"},
					{Text: "eggs", Done: true},
				},
			}
			id, err := s.Create(ctx, l)
			require.NoError(t, err)

			l.Title = "changed"
			l.Entries[0].Text = "changed"

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			require.Equal(t, "groceries", got.Title)
			require.Equal(t, "milk", got.Entries[0].Text)
		})

		t.Run("will produce distinct ids under concurrent use", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			const n = 50

			var (
				mu  sync.Mutex
				ids = make(map[todolist.ID]struct{}, n)
			)

			var eg errgroup.Group
			for i := range n {
				eg.Go(func() error {
					id, err := s.Create(ctx, todolist.List{Title: fmt.Sprintf("list-%d", i)})
					if err != nil {
						return err
					}

					mu.Lock()
					defer mu.Unlock()
					ids[id] = struct{}{}
					return nil
				})
			}
			require.NoError(t, eg.Wait())
			require.Len(t, ids, n)

			for id := range ids {
				_, err := s.Get(ctx, id)
				require.NoError(t, err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("will return the created list", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			l := todolist.List{
				Title: "chores",
				Entries: []todolist.Entry{
					{Text: "dishes"},
					{Text: "dishes"},
					{Text: "", Done: true},
				},
			}
			id, err := s.Create(ctx, l)
			require.NoError(t, err)

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			require.Equal(t, l, got)
		})

		t.Run("will return a copy the caller may mutate", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			id, err := s.Create(ctx, todolist.List{
				Title:   "a",
				Entries: []todolist.Entry{{Text: "x"}},
			})
			require.NoError(t, err)

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			got.Entries[0].Text = "y"

			again, err := s.Get(ctx, id)
			require.NoError(t, err)
			require.Equal(t, "x", again.Entries[0].Text)
		})

		t.Run("will return ErrNotFound for an id that was never issued", func(t *testing.T) {
			s := newStore(t)

			_, err := s.Get(context.Background(), 9)
			require.ErrorIs(t, err, todolist.ErrNotFound)
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("will replace the stored list wholesale", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			id, err := s.Create(ctx, todolist.List{
				Title:   "before",
				Entries: []todolist.Entry{{Text: "one"}, {Text: "two"}},
			})
			require.NoError(t, err)

			after := todolist.List{
				Title:   "after",
				Entries: []todolist.Entry{{Text: "three", Done: true}},
			}
			require.NoError(t, s.Update(ctx, id, after))

			got, err := s.Get(ctx, id)
			require.NoError(t, err)
			require.Equal(t, after, got)
		})

		t.Run("will not create a record for a missing id", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			err := s.Update(ctx, 3, todolist.List{Title: "ghost"})
			require.ErrorIs(t, err, todolist.ErrNotFound)

			_, err = s.Get(ctx, 3)
			require.ErrorIs(t, err, todolist.ErrNotFound)

			id, err := s.Create(ctx, todolist.List{Title: "real"})
			require.NoError(t, err)
			require.Equal(t, todolist.ID(0), id)
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("will succeed once and then return ErrNotFound", func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			id, err := s.Create(ctx, todolist.List{Title: "temp"})
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, id))

			_, err = s.Get(ctx, id)
			require.ErrorIs(t, err, todolist.ErrNotFound)

			err = s.Delete(ctx, id)
			require.ErrorIs(t, err, todolist.ErrNotFound)
		})

		t.Run("will return ErrNotFound for an id that was never issued", func(t *testing.T) {
			s := newStore(t)

			err := s.Delete(context.Background(), 9)
			require.ErrorIs(t, err, todolist.ErrNotFound)
		})
	})

	t.Run("will follow the create, read, update, delete scenario", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		requireMissing := func() {
			t.Helper()
			_, err := s.Get(ctx, 9)
			require.ErrorIs(t, err, todolist.ErrNotFound)
		}

		requireMissing()
		id, err := s.Create(ctx, todolist.List{Title: "abc"})
		require.NoError(t, err)
		require.Equal(t, todolist.ID(0), id)

		requireMissing()
		got, err := s.Get(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, "abc", got.Title)

		requireMissing()
		require.NoError(t, s.Update(ctx, 0, todolist.List{Title: "xyz"}))

		requireMissing()
		got, err = s.Get(ctx, 0)
		require.NoError(t, err)
		require.Equal(t, "xyz", got.Title)

		requireMissing()
		require.NoError(t, s.Delete(ctx, 0))

		requireMissing()
		_, err = s.Get(ctx, 0)
		require.ErrorIs(t, err, todolist.ErrNotFound)
		requireMissing()
	})
}
