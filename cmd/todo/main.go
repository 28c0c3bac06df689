// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command todo serves the to-do list REST api.
package main

import (
	"context"
	"os"

	"github.com/z5labs/todo"
	"github.com/z5labs/todo/app"
	"github.com/z5labs/todo/http"
	"github.com/z5labs/todo/internal/todoapp"
	"github.com/z5labs/todo/otel"
)

func main() {
	listener := http.NewTCPListener(http.AddrFromEnv())

	srv := http.NewServer(
		listener,
		http.ReadTimeout(http.ReadTimeoutFromEnv()),
		http.WriteTimeout(http.WriteTimeoutFromEnv()),
		http.ShutdownTimeout(http.ShutdownTimeoutFromEnv()),
	)

	appBuilder := app.WithHooks(func(ctx context.Context, h *app.HookRegistry) (*http.App, error) {
		api := todoapp.Api(todoapp.ConfigFromEnv(), h)
		return http.Build(srv, api).Build(ctx)
	})

	otelBuilder := otel.Build(otel.ConfigFromEnv(), appBuilder)

	err := app.Run(context.Background(), otelBuilder)
	if err != nil {
		app.LogError(todo.LogHandler("main"), err)
		os.Exit(1)
	}
}
