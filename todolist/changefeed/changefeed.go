// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package changefeed decorates a [todolist.Store] so that every successful
// mutation is published as an [Event] to a Kafka topic.
package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/z5labs/todo"
	"github.com/z5labs/todo/health"
	"github.com/z5labs/todo/todolist"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Kind describes which mutation produced an [Event].
type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// KindHeader is the record header carrying the [Kind] of an [Event].
const KindHeader = "todo-event-kind"

// Event is the JSON payload of a change record.
type Event struct {
	ID         uuid.UUID      `json:"id"`
	Kind       Kind           `json:"kind"`
	ListID     todolist.ID    `json:"list_id,string"`
	List       *todolist.List `json:"list,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Producer synchronously writes records to Kafka. [*kgo.Client] satisfies it.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store wraps another [todolist.Store] and publishes an [Event] after
// every successful Create, Update and Delete.
//
// Publishing happens after the mutation has been applied, so a publish
// failure is logged rather than returned.
type Store struct {
	inner    todolist.Store
	producer Producer
	topic    string
	log      *slog.Logger
	now      func() time.Time
}

var _ todolist.Store = (*Store)(nil)

// Wrap returns a [Store] publishing to topic through producer.
func Wrap(inner todolist.Store, producer Producer, topic string) *Store {
	return &Store{
		inner:    inner,
		producer: producer,
		topic:    topic,
		log:      todo.Logger("github.com/z5labs/todo/todolist/changefeed"),
		now:      time.Now,
	}
}

// Create implements the [todolist.Store] interface.
func (s *Store) Create(ctx context.Context, l todolist.List) (todolist.ID, error) {
	id, err := s.inner.Create(ctx, l)
	if err != nil {
		return id, err
	}

	snapshot := l.Clone()
	s.publish(ctx, Created, id, &snapshot)
	return id, nil
}

// Get implements the [todolist.Store] interface.
func (s *Store) Get(ctx context.Context, id todolist.ID) (todolist.List, error) {
	return s.inner.Get(ctx, id)
}

// Update implements the [todolist.Store] interface.
func (s *Store) Update(ctx context.Context, id todolist.ID, l todolist.List) error {
	err := s.inner.Update(ctx, id, l)
	if err != nil {
		return err
	}

	snapshot := l.Clone()
	s.publish(ctx, Updated, id, &snapshot)
	return nil
}

// Delete implements the [todolist.Store] interface.
func (s *Store) Delete(ctx context.Context, id todolist.ID) error {
	err := s.inner.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.publish(ctx, Deleted, id, nil)
	return nil
}

// Healthy implements the [health.Monitor] interface by delegating to the
// wrapped store when it is itself a monitor.
func (s *Store) Healthy(ctx context.Context) (bool, error) {
	m, ok := s.inner.(health.Monitor)
	if !ok {
		return true, nil
	}
	return m.Healthy(ctx)
}

func (s *Store) publish(ctx context.Context, kind Kind, id todolist.ID, l *todolist.List) {
	ev := Event{
		ID:         uuid.New(),
		Kind:       kind,
		ListID:     id,
		List:       l,
		OccurredAt: s.now().UTC(),
	}

	value, err := json.Marshal(ev)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to encode change event", slog.Any("error", err))
		return
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(id.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: KindHeader, Value: []byte(kind)},
		},
	}

	err = s.producer.ProduceSync(ctx, record).FirstErr()
	if err != nil {
		s.log.ErrorContext(
			ctx,
			"failed to publish change event",
			slog.String("topic", s.topic),
			slog.String("kind", string(kind)),
			slog.String("list_id", id.String()),
			slog.Any("error", err),
		)
	}
}
