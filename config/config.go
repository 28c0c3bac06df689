// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config provides composable, lazily evaluated configuration values.
//
// A [Reader] produces a [Value] which may or may not be set. Readers are
// combined with helpers like [Or], [Default] and [Map] so that sources such
// as environment variables and config files can be layered declaratively
// and only resolved when an application is built.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrValueNotSet is returned by [Read] when a [Reader] produced no value.
var ErrValueNotSet = errors.New("config value not set")

// Value is the result of reading a configuration source.
// The zero value represents an unset value.
type Value[T any] struct {
	value T
	set   bool
}

// ValueOf returns a set [Value] holding v.
func ValueOf[T any](v T) Value[T] {
	return Value[T]{
		value: v,
		set:   true,
	}
}

// Value returns the underlying value and whether it was set.
func (v Value[T]) Value() (T, bool) {
	return v.value, v.set
}

// Reader represents any source of a configuration value.
type Reader[T any] interface {
	Read(context.Context) (Value[T], error)
}

// ReaderFunc is a func type of the [Reader] interface.
type ReaderFunc[T any] func(context.Context) (Value[T], error)

// Read implements the [Reader] interface.
func (f ReaderFunc[T]) Read(ctx context.Context) (Value[T], error) {
	return f(ctx)
}

// EmptyReader returns a [Reader] which never produces a value.
func EmptyReader[T any]() Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		return Value[T]{}, nil
	})
}

// ReaderOf returns a [Reader] which always produces v.
func ReaderOf[T any](v T) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		return ValueOf(v), nil
	})
}

// Env reads the environment variable name. An unset or empty
// variable produces an unset [Value].
func Env(name string) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return Value[string]{}, nil
		}
		return ValueOf(v), nil
	})
}

// Or returns the first set value from the given readers, in order.
// Nil readers are skipped.
func Or[T any](rs ...Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		for _, r := range rs {
			if r == nil {
				continue
			}

			v, err := r.Read(ctx)
			if err != nil {
				return Value[T]{}, err
			}
			if _, set := v.Value(); set {
				return v, nil
			}
		}
		return Value[T]{}, nil
	})
}

// Default falls back to def when r produces no value.
func Default[T any](def T, r Reader[T]) Reader[T] {
	return Or(r, ReaderOf(def))
}

// Map transforms a set value read from r with f. Unset values pass through
// without calling f.
func Map[A, B any](r Reader[A], f func(context.Context, A) (B, error)) Reader[B] {
	return ReaderFunc[B](func(ctx context.Context) (Value[B], error) {
		v, err := r.Read(ctx)
		if err != nil {
			return Value[B]{}, err
		}

		a, set := v.Value()
		if !set {
			return Value[B]{}, nil
		}

		b, err := f(ctx, a)
		if err != nil {
			return Value[B]{}, err
		}
		return ValueOf(b), nil
	})
}

// Read resolves r, failing with [ErrValueNotSet] if it produced no value.
func Read[T any](ctx context.Context, r Reader[T]) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrValueNotSet
	}

	v, err := r.Read(ctx)
	if err != nil {
		return zero, err
	}

	t, set := v.Value()
	if !set {
		return zero, ErrValueNotSet
	}
	return t, nil
}

// Must is like [Read] but panics on failure.
// Use it while building an application where misconfiguration is fatal.
func Must[T any](ctx context.Context, r Reader[T]) T {
	t, err := Read(ctx, r)
	if err != nil {
		panic(fmt.Errorf("failed to read required config value: %w", err))
	}
	return t
}

// MustOr resolves r, returning def if r is nil or produced no value.
// It panics if r fails to read.
func MustOr[T any](ctx context.Context, def T, r Reader[T]) T {
	t, err := Read(ctx, r)
	if errors.Is(err, ErrValueNotSet) {
		return def
	}
	if err != nil {
		panic(fmt.Errorf("failed to read config value: %w", err))
	}
	return t
}
