// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/z5labs/todo/todolist"
	"github.com/z5labs/todo/todolist/memory"
	"github.com/z5labs/todo/todolist/storetest"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type recordingProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func decodeEvent(t *testing.T, r *kgo.Record) Event {
	t.Helper()

	var ev Event
	require.NoError(t, json.Unmarshal(r.Value, &ev))
	return ev
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) todolist.Store {
		return Wrap(memory.New(), &recordingProducer{}, "todo-lists")
	})
}

func TestStore_Publish(t *testing.T) {
	t.Run("will publish one event per successful mutation", func(t *testing.T) {
		p := &recordingProducer{}
		s := Wrap(memory.New(), p, "todo-lists")

		now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }

		ctx := context.Background()
		l := todolist.List{
			Title:   "groceries",
			Entries: []todolist.Entry{{Text: "milk"}},
		}

		id, err := s.Create(ctx, l)
		require.NoError(t, err)

		_, err = s.Get(ctx, id)
		require.NoError(t, err)

		require.NoError(t, s.Update(ctx, id, todolist.List{Title: "errands"}))
		require.NoError(t, s.Delete(ctx, id))

		require.Len(t, p.records, 3)

		kinds := []Kind{Created, Updated, Deleted}
		for i, r := range p.records {
			require.Equal(t, "todo-lists", r.Topic)
			require.Equal(t, []byte(id.String()), r.Key)
			require.Equal(t, []kgo.RecordHeader{{Key: KindHeader, Value: []byte(kinds[i])}}, r.Headers)

			ev := decodeEvent(t, r)
			require.Equal(t, kinds[i], ev.Kind)
			require.Equal(t, id, ev.ListID)
			require.Equal(t, now, ev.OccurredAt)
			require.NotZero(t, ev.ID)
		}

		created := decodeEvent(t, p.records[0])
		require.Equal(t, &l, created.List)

		updated := decodeEvent(t, p.records[1])
		require.Equal(t, "errands", updated.List.Title)

		deleted := decodeEvent(t, p.records[2])
		require.Nil(t, deleted.List)
	})

	t.Run("will not publish when the mutation fails", func(t *testing.T) {
		p := &recordingProducer{}
		s := Wrap(memory.New(memory.StartingAt(todolist.MaxID)), p, "todo-lists")
		ctx := context.Background()

		_, err := s.Create(ctx, todolist.List{Title: "overflow"})
		require.ErrorIs(t, err, todolist.ErrExhausted)

		err = s.Update(ctx, 1, todolist.List{Title: "missing"})
		require.ErrorIs(t, err, todolist.ErrNotFound)

		err = s.Delete(ctx, 1)
		require.ErrorIs(t, err, todolist.ErrNotFound)

		require.Empty(t, p.records)
	})

	t.Run("will not fail the mutation if publishing fails", func(t *testing.T) {
		p := &recordingProducer{err: errors.New("broker unavailable")}
		inner := memory.New()
		s := Wrap(inner, p, "todo-lists")

		id, err := s.Create(context.Background(), todolist.List{Title: "a"})
		require.NoError(t, err)
		require.Equal(t, 1, inner.Len())

		_, err = s.Get(context.Background(), id)
		require.NoError(t, err)
	})
}
