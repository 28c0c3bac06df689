// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel configures OpenTelemetry for the to-do service.
//
// Traces, metrics and logs are exported over OTLP when an endpoint is
// configured. Without one, traces and metrics are dropped and logs are
// written to stdout as JSON so the service is still observable locally.
//
// Environment Variables:
//   - OTEL_SERVICE_NAME: service name resource attribute, defaults to "todo"
//   - OTEL_SERVICE_VERSION: service version resource attribute
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector address, enables OTLP export
//   - OTEL_EXPORTER_OTLP_PROTOCOL: "grpc" (default) or "http"
//   - OTEL_TRACES_SAMPLER_RATIO: trace sampling ratio, defaults to 1.0
package otel

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/z5labs/todo/config"

	"go.opentelemetry.io/otel/log"
	lognoop "go.opentelemetry.io/otel/log/noop"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
)

// Config describes where telemetry should be sent.
type Config struct {
	ServiceName    config.Reader[string]
	ServiceVersion config.Reader[string]
	Endpoint       config.Reader[string]
	Protocol       config.Reader[string]
	SampleRatio    config.Reader[float64]

	// Fallback receives log records when no OTLP endpoint is configured.
	// Defaults to a JSON handler on stdout.
	Fallback config.Reader[slog.Handler]
}

// ConfigFromEnv reads a [Config] from the standard OTEL_* variables.
func ConfigFromEnv() Config {
	return Config{
		ServiceName:    config.Env("OTEL_SERVICE_NAME"),
		ServiceVersion: config.Env("OTEL_SERVICE_VERSION"),
		Endpoint:       config.Env("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Protocol:       config.Env("OTEL_EXPORTER_OTLP_PROTOCOL"),
		SampleRatio:    config.Float64FromString(config.Env("OTEL_TRACES_SAMPLER_RATIO")),
		Fallback:       config.EmptyReader[slog.Handler](),
	}
}

// SDK is a resolved set of OpenTelemetry providers.
type SDK struct {
	Propagator     propagation.TextMapPropagator
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	LoggerProvider log.LoggerProvider

	conn *grpc.ClientConn
}

// Read implements the [config.Reader] interface.
func (c Config) Read(ctx context.Context) (config.Value[SDK], error) {
	rsc, err := c.resource(ctx)
	if err != nil {
		return config.Value[SDK]{}, err
	}

	sdk := SDK{
		Propagator: propagation.NewCompositeTextMapPropagator(
			propagation.Baggage{},
			propagation.TraceContext{},
		),
		TracerProvider: tracenoop.NewTracerProvider(),
		MeterProvider:  metricnoop.NewMeterProvider(),
		LoggerProvider: lognoop.NewLoggerProvider(),
	}

	endpoint := config.MustOr(ctx, "", c.Endpoint)
	if endpoint == "" {
		handler := config.MustOr[slog.Handler](ctx, slog.NewJSONHandler(os.Stdout, nil), c.Fallback)

		sdk.LoggerProvider = sdklog.NewLoggerProvider(
			sdklog.WithResource(rsc),
			sdklog.WithProcessor(sdklog.NewSimpleProcessor(&slogExporter{handler: handler})),
		)
		return config.ValueOf(sdk), nil
	}

	exps, err := newExporters(ctx, Protocol(config.MustOr(ctx, string(ProtocolGRPC), c.Protocol)), endpoint)
	if err != nil {
		return config.Value[SDK]{}, err
	}
	sdk.conn = exps.conn

	ratio := config.MustOr(ctx, 1.0, c.SampleRatio)
	sdk.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(rsc),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(exps.span),
	)
	sdk.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(rsc),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exps.metric)),
	)
	sdk.LoggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithResource(rsc),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exps.log)),
	)
	return config.ValueOf(sdk), nil
}

func (c Config) resource(ctx context.Context) (*resource.Resource, error) {
	name := config.MustOr(ctx, "todo", c.ServiceName)
	version := config.MustOr(ctx, "", c.ServiceVersion)

	rsc, err := resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(name),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %w", err)
	}
	return rsc, nil
}
