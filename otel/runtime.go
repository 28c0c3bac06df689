// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"time"

	"github.com/z5labs/todo/app"
	"github.com/z5labs/todo/config"

	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
)

// Runtime runs an inner [app.Runtime] with the OpenTelemetry providers
// registered globally and shuts them down once it returns.
type Runtime struct {
	inner app.Runtime
	sdk   SDK
}

// Build registers the providers read from sdk as the global providers
// before building the inner runtime, so everything built by b is
// instrumented. Go runtime metrics are recorded against the meter provider.
func Build[T app.Runtime](sdk config.Reader[SDK], b app.Builder[T]) app.Builder[Runtime] {
	return app.BuilderFunc[Runtime](func(ctx context.Context) (Runtime, error) {
		s, err := config.Read(ctx, sdk)
		if err != nil {
			return Runtime{}, err
		}

		otel.SetTextMapPropagator(s.Propagator)
		otel.SetTracerProvider(s.TracerProvider)
		otel.SetMeterProvider(s.MeterProvider)
		global.SetLoggerProvider(s.LoggerProvider)

		err = runtime.Start(
			runtime.WithMeterProvider(s.MeterProvider),
			runtime.WithMinimumReadMemStatsInterval(time.Second),
		)
		if err != nil {
			return Runtime{}, errors.Join(err, s.shutdown())
		}

		inner, err := b.Build(ctx)
		if err != nil {
			return Runtime{}, errors.Join(err, s.shutdown())
		}

		return Runtime{
			inner: inner,
			sdk:   s,
		}, nil
	})
}

// Run implements the [app.Runtime] interface.
func (rt Runtime) Run(ctx context.Context) (err error) {
	defer try.Close(&err, closerFunc(rt.sdk.shutdown))

	return rt.inner.Run(ctx)
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

type shutdowner interface {
	Shutdown(context.Context) error
}

// shutdown flushes the providers before closing the shared grpc connection.
func (s SDK) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	for _, v := range []any{s.TracerProvider, s.MeterProvider, s.LoggerProvider} {
		if sd, ok := v.(shutdowner); ok {
			errs = append(errs, sd.Shutdown(ctx))
		}
	}
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	return errors.Join(errs...)
}
