// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app builds and runs the to-do service process.
//
// An application is assembled from [Builder]s which are chained together
// with [Bind] and [Map]. [Run] builds the final [Runtime] under a context
// that is cancelled on SIGINT or SIGTERM and then runs it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Builder constructs a T from configuration resolved at build time.
type Builder[T any] interface {
	Build(context.Context) (T, error)
}

// BuilderFunc is a func type of the [Builder] interface.
type BuilderFunc[T any] func(context.Context) (T, error)

// Build implements the [Builder] interface.
func (f BuilderFunc[T]) Build(ctx context.Context) (T, error) {
	return f(ctx)
}

// Build creates a [Builder] from f.
func Build[T any](f func(context.Context) (T, error)) Builder[T] {
	return BuilderFunc[T](f)
}

// Bind feeds the value built by b into f to choose the next [Builder].
func Bind[A, B any](b Builder[A], f func(A) Builder[B]) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		a, err := b.Build(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a).Build(ctx)
	})
}

// Map transforms the value built by b with f.
func Map[A, B any](b Builder[A], f func(A) B) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		a, err := b.Build(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(a), nil
	})
}

// Runtime is a long running process, like an HTTP server.
type Runtime interface {
	Run(context.Context) error
}

// RuntimeFunc is a func type of the [Runtime] interface.
type RuntimeFunc func(context.Context) error

// Run implements the [Runtime] interface.
func (f RuntimeFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// BuildError is returned by [Run] when the [Runtime] could not be built.
type BuildError struct {
	Cause error
}

// Error implements the [error] interface.
func (e BuildError) Error() string {
	return fmt.Sprintf("failed to build app: %s", e.Cause)
}

// Unwrap returns the underlying build failure.
func (e BuildError) Unwrap() error {
	return e.Cause
}

// Run builds a [Runtime] from b and runs it until it returns or the
// process receives SIGINT or SIGTERM.
func Run[T Runtime](ctx context.Context, b Builder[T]) error {
	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := b.Build(sigCtx)
	if err != nil {
		return BuildError{Cause: err}
	}
	return rt.Run(sigCtx)
}

// LogError records err with handler. It does nothing for a nil err.
func LogError(handler slog.Handler, err error) {
	if err == nil {
		return
	}

	log := slog.New(handler)
	log.Error("todo service exited with an error", slog.Any("error", err))
}
