// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package instrumented decorates a [todolist.Store] with OpenTelemetry
// traces and metrics.
package instrumented

import (
	"context"
	"errors"
	"time"

	"github.com/z5labs/todo/health"
	"github.com/z5labs/todo/todolist"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/z5labs/todo/todolist/instrumented"

// Outcome attribute values.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeExhausted = "exhausted"
	OutcomeError     = "error"
)

// Options configure a [Store].
type Options struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option sets a value on [Options].
type Option func(*Options)

// TracerProvider overrides the global [trace.TracerProvider].
func TracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		o.tracerProvider = tp
	}
}

// MeterProvider overrides the global [metric.MeterProvider].
func MeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) {
		o.meterProvider = mp
	}
}

// Store wraps another [todolist.Store], recording a span, an operation
// count and a duration for every call.
type Store struct {
	inner    todolist.Store
	tracer   trace.Tracer
	ops      metric.Int64Counter
	duration metric.Float64Histogram
}

var _ todolist.Store = (*Store)(nil)

// Wrap instruments inner.
func Wrap(inner todolist.Store, opts ...Option) (*Store, error) {
	o := &Options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(o)
	}

	meter := o.meterProvider.Meter(instrumentationName)

	ops, err := meter.Int64Counter(
		"todolist.store.operations",
		metric.WithDescription("Number of todo list store operations."),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"todolist.store.duration",
		metric.WithDescription("Duration of todo list store operations."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Store{
		inner:    inner,
		tracer:   o.tracerProvider.Tracer(instrumentationName),
		ops:      ops,
		duration: duration,
	}, nil
}

// Create implements the [todolist.Store] interface.
func (s *Store) Create(ctx context.Context, l todolist.List) (id todolist.ID, err error) {
	spanCtx, finish := s.start(ctx, "Create", attribute.Int("todo.list.entries", len(l.Entries)))
	defer func() {
		if err == nil {
			trace.SpanFromContext(spanCtx).SetAttributes(attribute.String("todo.list.id", id.String()))
		}
		finish(err)
	}()

	return s.inner.Create(spanCtx, l)
}

// Get implements the [todolist.Store] interface.
func (s *Store) Get(ctx context.Context, id todolist.ID) (l todolist.List, err error) {
	spanCtx, finish := s.start(ctx, "Get", attribute.String("todo.list.id", id.String()))
	defer func() { finish(err) }()

	return s.inner.Get(spanCtx, id)
}

// Update implements the [todolist.Store] interface.
func (s *Store) Update(ctx context.Context, id todolist.ID, l todolist.List) (err error) {
	spanCtx, finish := s.start(
		ctx,
		"Update",
		attribute.String("todo.list.id", id.String()),
		attribute.Int("todo.list.entries", len(l.Entries)),
	)
	defer func() { finish(err) }()

	return s.inner.Update(spanCtx, id, l)
}

// Delete implements the [todolist.Store] interface.
func (s *Store) Delete(ctx context.Context, id todolist.ID) (err error) {
	spanCtx, finish := s.start(ctx, "Delete", attribute.String("todo.list.id", id.String()))
	defer func() { finish(err) }()

	return s.inner.Delete(spanCtx, id)
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

func (s *Store) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	begin := time.Now()

	spanCtx, span := s.tracer.Start(
		ctx,
		"todolist.Store."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)

	return spanCtx, func(err error) {
		defer span.End()

		outcome := Outcome(err)
		if err != nil && outcome != OutcomeNotFound {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		set := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		)
		s.ops.Add(spanCtx, 1, set)
		s.duration.Record(spanCtx, time.Since(begin).Seconds(), set)
	}
}

// Outcome classifies the result of a store operation.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, todolist.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, todolist.ErrExhausted):
		return OutcomeExhausted
	default:
		return OutcomeError
	}
}
