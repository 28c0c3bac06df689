// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config_test

import (
	"context"
	"fmt"
	"os"

	"github.com/z5labs/todo/config"
)

func ExampleDefault() {
	os.Unsetenv("TODO_EXAMPLE_PORT")

	port := config.Default(8080, config.IntFromString(config.Env("TODO_EXAMPLE_PORT")))

	fmt.Println(config.Must(context.Background(), port))
	// Output: 8080
}

func ExampleOr() {
	os.Setenv("TODO_EXAMPLE_ADDR", ":9090")
	defer os.Unsetenv("TODO_EXAMPLE_ADDR")

	addr := config.Or(
		config.Env("TODO_EXAMPLE_ADDR"),
		config.ReaderOf(":8080"),
	)

	fmt.Println(config.Must(context.Background(), addr))
	// Output: :9090
}
