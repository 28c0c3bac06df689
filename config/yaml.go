// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File reads the entire file named by path. An unset path produces an
// unset [Value].
func File(path Reader[string]) Reader[io.Reader] {
	return Map(path, func(ctx context.Context, name string) (io.Reader, error) {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return bytes.NewReader(b), nil
	})
}

// UnmarshalYAML decodes the YAML document read from r into a T.
// An empty document produces the zero value of T.
func UnmarshalYAML[T any](r Reader[io.Reader]) Reader[T] {
	return Map(r, func(ctx context.Context, src io.Reader) (T, error) {
		var t T
		err := yaml.NewDecoder(src).Decode(&t)
		if err != nil && err != io.EOF {
			return t, fmt.Errorf("failed to decode yaml config: %w", err)
		}
		return t, nil
	})
}
