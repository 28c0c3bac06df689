// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingRuntime struct {
	called bool
	err    error
	run    func(context.Context) error
}

func (r *recordingRuntime) Run(ctx context.Context) error {
	r.called = true
	if r.run != nil {
		return r.run(ctx)
	}
	return r.err
}

func TestWithHooks(t *testing.T) {
	t.Run("will run hooks in reverse registration order", func(t *testing.T) {
		t.Run("after the runtime returns", func(t *testing.T) {
			var order []string
			builder := WithHooks(func(ctx context.Context, h *HookRegistry) (Runtime, error) {
				h.OnPostRun(func(ctx context.Context) error {
					order = append(order, "store")
					return nil
				})
				h.OnPostRun(func(ctx context.Context) error {
					order = append(order, "changefeed")
					return nil
				})
				return &recordingRuntime{
					run: func(ctx context.Context) error {
						order = append(order, "runtime")
						return nil
					},
				}, nil
			})

			rt, err := builder.Build(context.Background())
			require.NoError(t, err)

			err = rt.Run(context.Background())
			require.NoError(t, err)
			require.Equal(t, []string{"runtime", "changefeed", "store"}, order)
		})
	})

	t.Run("will run every hook and join all errors", func(t *testing.T) {
		t.Run("if the runtime and hooks fail", func(t *testing.T) {
			runtimeErr := errors.New("runtime failed")
			hook1Err := errors.New("hook 1 failed")
			hook2Err := errors.New("hook 2 failed")

			var called []int
			builder := WithHooks(func(ctx context.Context, h *HookRegistry) (Runtime, error) {
				h.OnPostRun(func(ctx context.Context) error {
					called = append(called, 1)
					return hook1Err
				})
				h.OnPostRun(func(ctx context.Context) error {
					called = append(called, 2)
					return nil
				})
				h.OnPostRun(func(ctx context.Context) error {
					called = append(called, 3)
					return hook2Err
				})
				return &recordingRuntime{err: runtimeErr}, nil
			})

			rt, err := builder.Build(context.Background())
			require.NoError(t, err)

			err = rt.Run(context.Background())
			require.ErrorIs(t, err, runtimeErr)
			require.ErrorIs(t, err, hook1Err)
			require.ErrorIs(t, err, hook2Err)
			require.Equal(t, []int{3, 2, 1}, called)
		})
	})

	t.Run("will run registered hooks", func(t *testing.T) {
		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("build failed")

			cleaned := false
			builder := WithHooks(func(ctx context.Context, h *HookRegistry) (Runtime, error) {
				h.OnPostRun(func(ctx context.Context) error {
					cleaned = true
					return nil
				})
				return nil, buildErr
			})

			_, err := builder.Build(context.Background())
			require.ErrorIs(t, err, buildErr)
			require.True(t, cleaned)
		})
	})

	t.Run("will give hooks an uncancelled context", func(t *testing.T) {
		t.Run("if the run context was cancelled", func(t *testing.T) {
			type ctxKey string

			var hookErr error
			var hookValue any
			builder := WithHooks(func(ctx context.Context, h *HookRegistry) (Runtime, error) {
				h.OnPostRun(func(ctx context.Context) error {
					hookErr = ctx.Err()
					hookValue = ctx.Value(ctxKey("k"))
					return nil
				})
				return &recordingRuntime{}, nil
			})

			rt, err := builder.Build(context.Background())
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey("k"), "v"))
			cancel()

			err = rt.Run(ctx)
			require.NoError(t, err)
			require.NoError(t, hookErr)
			require.Equal(t, "v", hookValue)
		})
	})
}

func TestRun(t *testing.T) {
	t.Run("will return a BuildError", func(t *testing.T) {
		t.Run("if the builder fails", func(t *testing.T) {
			buildErr := errors.New("bad config")
			b := Build(func(ctx context.Context) (Runtime, error) {
				return nil, buildErr
			})

			err := Run(context.Background(), b)

			var be BuildError
			require.ErrorAs(t, err, &be)
			require.ErrorIs(t, err, buildErr)
		})
	})

	t.Run("will run the built runtime", func(t *testing.T) {
		t.Run("if the builder succeeds", func(t *testing.T) {
			rt := &recordingRuntime{}
			b := Map(Build(func(ctx context.Context) (int, error) {
				return 1, nil
			}), func(int) *recordingRuntime {
				return rt
			})

			err := Run(context.Background(), b)
			require.NoError(t, err)
			require.True(t, rt.called)
		})
	})
}
