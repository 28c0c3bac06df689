// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package objectstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/z5labs/todo/todolist"

	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string]string
	fail    func(key string, attempt int) error
	puts    int
}

func (f *fakeObjects) put(ctx context.Context, key string, b []byte) error {
	f.puts++
	if f.fail != nil {
		if err := f.fail(key, f.puts); err != nil {
			return err
		}
	}
	f.objects[key] = string(b)
	return nil
}

func newFakeStore(f *fakeObjects, next todolist.ID) *Store {
	f.objects = make(map[string]string)
	return &Store{
		bucket:    "todo-lists",
		putObject: f.put,
		next:      next,
	}
}

func TestStore_Create(t *testing.T) {
	errUnavailable := errors.New("service unavailable")

	t.Run("will persist the counter and the list", func(t *testing.T) {
		t.Run("if both writes succeed", func(t *testing.T) {
			f := &fakeObjects{}
			s := newFakeStore(f, 3)

			id, err := s.Create(context.Background(), todolist.List{Title: "abc"})
			require.NoError(t, err)
			require.Equal(t, todolist.ID(3), id)
			require.Equal(t, "4", f.objects[counterKey])
			require.Contains(t, f.objects[objectKey(3)], `"abc"`)
		})
	})

	t.Run("will give the id back", func(t *testing.T) {
		t.Run("if the list write fails", func(t *testing.T) {
			f := &fakeObjects{
				fail: func(key string, _ int) error {
					if strings.HasPrefix(key, "lists/") {
						return errUnavailable
					}
					return nil
				},
			}
			s := newFakeStore(f, 0)

			_, err := s.Create(context.Background(), todolist.List{Title: "abc"})
			require.ErrorIs(t, err, errUnavailable)
			require.Equal(t, todolist.ID(0), s.next)
			require.Equal(t, "0", f.objects[counterKey])

			f.fail = nil
			id, err := s.Create(context.Background(), todolist.List{Title: "abc"})
			require.NoError(t, err)
			require.Equal(t, todolist.ID(0), id)
		})
	})

	t.Run("will burn the id", func(t *testing.T) {
		t.Run("if the counter cannot be restored", func(t *testing.T) {
			f := &fakeObjects{
				fail: func(_ string, attempt int) error {
					if attempt > 1 {
						return errUnavailable
					}
					return nil
				},
			}
			s := newFakeStore(f, 0)

			_, err := s.Create(context.Background(), todolist.List{Title: "abc"})
			require.ErrorIs(t, err, errUnavailable)
			require.Equal(t, todolist.ID(1), s.next)
			require.Equal(t, "1", f.objects[counterKey])
		})
	})

	t.Run("will not touch the bucket", func(t *testing.T) {
		t.Run("if the counter write fails", func(t *testing.T) {
			f := &fakeObjects{
				fail: func(string, int) error { return errUnavailable },
			}
			s := newFakeStore(f, 5)

			_, err := s.Create(context.Background(), todolist.List{Title: "abc"})
			require.ErrorIs(t, err, errUnavailable)
			require.Equal(t, todolist.ID(5), s.next)
			require.Empty(t, f.objects)
		})
	})
}
