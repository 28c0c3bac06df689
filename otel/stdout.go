// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// slogExporter hands log records to a [slog.Handler].
type slogExporter struct {
	handler slog.Handler
}

// Export implements the [sdklog.Exporter] interface.
func (e *slogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	const sevOffset = log.SeverityDebug - log.Severity(slog.LevelDebug)

	for _, record := range records {
		level := slog.Level(record.Severity() - sevOffset)
		if !e.handler.Enabled(ctx, level) {
			continue
		}

		sr := slog.NewRecord(record.Timestamp(), level, record.Body().AsString(), 0)
		if scope := record.InstrumentationScope().Name; scope != "" {
			sr.AddAttrs(slog.String("logger", scope))
		}

		record.WalkAttributes(func(kv log.KeyValue) bool {
			sr.AddAttrs(slog.Attr{
				Key:   kv.Key,
				Value: slogValue(kv.Value),
			})
			return true
		})

		if record.TraceID().IsValid() {
			sr.AddAttrs(slog.Group(
				"otel",
				slog.String("trace_id", record.TraceID().String()),
				slog.String("span_id", record.SpanID().String()),
			))
		}

		if err := e.handler.Handle(ctx, sr); err != nil {
			return err
		}
	}
	return nil
}

// ForceFlush implements the [sdklog.Exporter] interface.
func (e *slogExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown implements the [sdklog.Exporter] interface.
func (e *slogExporter) Shutdown(ctx context.Context) error {
	return nil
}

func slogValue(v log.Value) slog.Value {
	switch v.Kind() {
	case log.KindBool:
		return slog.BoolValue(v.AsBool())
	case log.KindBytes:
		return slog.AnyValue(v.AsBytes())
	case log.KindFloat64:
		return slog.Float64Value(v.AsFloat64())
	case log.KindInt64:
		return slog.Int64Value(v.AsInt64())
	case log.KindString:
		return slog.StringValue(v.AsString())
	case log.KindMap:
		kvs := v.AsMap()
		attrs := make([]slog.Attr, 0, len(kvs))
		for _, kv := range kvs {
			attrs = append(attrs, slog.Attr{Key: kv.Key, Value: slogValue(kv.Value)})
		}
		return slog.GroupValue(attrs...)
	case log.KindSlice:
		vs := v.AsSlice()
		vals := make([]any, 0, len(vs))
		for _, sv := range vs {
			vals = append(vals, slogValue(sv).Any())
		}
		return slog.AnyValue(vals)
	default:
		return slog.StringValue(v.String())
	}
}
