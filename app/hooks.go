// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
)

// HookFunc runs once the [Runtime] it was registered against has returned.
type HookFunc func(context.Context) error

// HookRegistry collects cleanup hooks while an application is being built,
// typically one per opened resource such as a store or a Kafka client.
type HookRegistry struct {
	hooks []HookFunc
}

// OnPostRun registers hook. Hooks run in reverse registration order so
// a resource is released before anything it was built on top of.
func (r *HookRegistry) OnPostRun(hook HookFunc) {
	r.hooks = append(r.hooks, hook)
}

type hookRuntime struct {
	inner Runtime
	hooks []HookFunc
}

// Run runs the inner runtime and then every hook, even if the runtime or
// an earlier hook failed. Hooks receive a context which keeps the values of
// ctx but is never cancelled, since ctx is usually already done by then.
func (rt hookRuntime) Run(ctx context.Context) error {
	errs := []error{rt.inner.Run(ctx)}

	hookCtx := context.WithoutCancel(ctx)
	for i := len(rt.hooks) - 1; i >= 0; i-- {
		errs = append(errs, rt.hooks[i](hookCtx))
	}
	return errors.Join(errs...)
}

// WithHooks lets f register cleanup hooks next to the resources it opens.
//
//	builder := app.WithHooks(func(ctx context.Context, h *app.HookRegistry) (*http.App, error) {
//	    store, err := sqlite.Open(ctx, path)
//	    if err != nil {
//	        return nil, err
//	    }
//	    h.OnPostRun(func(ctx context.Context) error {
//	        return store.Close()
//	    })
//	    return buildApp(ctx, store)
//	})
//
// If f fails, the hooks it already registered are run before the error is
// returned.
func WithHooks[T Runtime](f func(context.Context, *HookRegistry) (T, error)) Builder[Runtime] {
	return BuilderFunc[Runtime](func(ctx context.Context) (Runtime, error) {
		registry := &HookRegistry{}

		inner, err := f(ctx, registry)
		if err != nil {
			cleanup := hookRuntime{
				inner: RuntimeFunc(func(context.Context) error { return err }),
				hooks: registry.hooks,
			}
			return nil, cleanup.Run(ctx)
		}

		return hookRuntime{
			inner: inner,
			hooks: registry.hooks,
		}, nil
	})
}
