// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package instrumented

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/z5labs/todo/todolist"
	"github.com/z5labs/todo/todolist/memory"
	"github.com/z5labs/todo/todolist/storetest"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type telemetry struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
}

func wrapMemory(t *testing.T, opts ...memory.Option) (*Store, telemetry) {
	t.Helper()

	tel := telemetry{
		spans:  tracetest.NewSpanRecorder(),
		reader: sdkmetric.NewManualReader(),
	}

	s, err := Wrap(
		memory.New(opts...),
		TracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(tel.spans))),
		MeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(tel.reader))),
	)
	require.NoError(t, err)
	return s, tel
}

// operationCounts sums the operations counter by "<operation>/<outcome>".
func (tel telemetry) operationCounts(t *testing.T) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, tel.reader.Collect(context.Background(), &rm))

	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "todolist.store.operations" {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value(attribute.Key("operation"))
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[fmt.Sprintf("%s/%s", op.AsString(), outcome.AsString())] += dp.Value
			}
		}
	}
	return counts
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) todolist.Store {
		s, _ := wrapMemory(t)
		return s
	})
}

func TestStore_Telemetry(t *testing.T) {
	t.Run("will record a span and count per operation", func(t *testing.T) {
		s, tel := wrapMemory(t)
		ctx := context.Background()

		id, err := s.Create(ctx, todolist.List{Title: "a"})
		require.NoError(t, err)

		_, err = s.Get(ctx, id)
		require.NoError(t, err)

		require.NoError(t, s.Update(ctx, id, todolist.List{Title: "b"}))
		require.NoError(t, s.Delete(ctx, id))

		_, err = s.Get(ctx, id)
		require.ErrorIs(t, err, todolist.ErrNotFound)

		spans := tel.spans.Ended()
		require.Len(t, spans, 5)

		names := make([]string, 0, len(spans))
		for _, span := range spans {
			names = append(names, span.Name())
		}
		require.Equal(t, []string{
			"todolist.Store.Create",
			"todolist.Store.Get",
			"todolist.Store.Update",
			"todolist.Store.Delete",
			"todolist.Store.Get",
		}, names)

		require.Equal(t, codes.Unset, spans[4].Status().Code)

		require.Equal(t, map[string]int64{
			"Create/ok":     1,
			"Get/ok":        1,
			"Get/not_found": 1,
			"Update/ok":     1,
			"Delete/ok":     1,
		}, tel.operationCounts(t))
	})

	t.Run("will mark the span as failed when the id space is exhausted", func(t *testing.T) {
		s, tel := wrapMemory(t, memory.StartingAt(todolist.MaxID))

		_, err := s.Create(context.Background(), todolist.List{Title: "overflow"})
		require.ErrorIs(t, err, todolist.ErrExhausted)

		spans := tel.spans.Ended()
		require.Len(t, spans, 1)
		require.Equal(t, codes.Error, spans[0].Status().Code)

		require.Equal(t, map[string]int64{
			"Create/exhausted": 1,
		}, tel.operationCounts(t))
	})
}

func TestStore_Healthy(t *testing.T) {
	s, _ := wrapMemory(t)

	healthy, err := s.Healthy(context.Background())
	require.NoError(t, err)
	require.True(t, healthy)
}

func TestOutcome(t *testing.T) {
	testCases := []struct {
		Name    string
		Err     error
		Outcome string
	}{
		{Name: "nil", Err: nil, Outcome: OutcomeOK},
		{Name: "not found", Err: todolist.NotFoundError{ID: 1}, Outcome: OutcomeNotFound},
		{Name: "wrapped exhausted", Err: fmt.Errorf("create: %w", todolist.ErrExhausted), Outcome: OutcomeExhausted},
		{Name: "other", Err: errors.New("connection reset"), Outcome: OutcomeError},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			require.Equal(t, testCase.Outcome, Outcome(testCase.Err))
		})
	}
}
