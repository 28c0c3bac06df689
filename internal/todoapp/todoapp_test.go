// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package todoapp

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/z5labs/todo/app"
	"github.com/z5labs/todo/config"
	"github.com/z5labs/todo/endpoint"
	"github.com/z5labs/todo/otel"
	"github.com/z5labs/todo/todolist"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/global"
)

func TestConfigFromEnv(t *testing.T) {
	t.Run("will default to the memory store", func(t *testing.T) {
		t.Run("if nothing is configured", func(t *testing.T) {
			t.Setenv("TODO_CONFIG_FILE", "")
			t.Setenv("TODO_STORE", "")
			t.Setenv("KAFKA_BROKERS", "")

			cfg, err := config.Read(context.Background(), ConfigFromEnv())
			require.Nil(t, err)
			require.Equal(t, MemoryStore, cfg.Store.Kind)
			require.Equal(t, "todo.db", cfg.Store.SQLite.Path)
			require.Empty(t, cfg.Changefeed.Brokers)
			require.Equal(t, "todo-list-events", cfg.Changefeed.Topic)
		})
	})

	t.Run("will let env override the config file", func(t *testing.T) {
		t.Run("if both set the same field", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			doc := `
store:
  kind: sqlite
  sqlite:
    path: /var/lib/todo.db
changefeed:
  brokers: [localhost:9092]
  topic: lists
`
			require.Nil(t, os.WriteFile(path, []byte(doc), 0o600))

			t.Setenv("TODO_CONFIG_FILE", path)
			t.Setenv("TODO_SQLITE_PATH", "/tmp/override.db")
			t.Setenv("KAFKA_BROKERS", "")

			cfg, err := config.Read(context.Background(), ConfigFromEnv())
			require.Nil(t, err)
			require.Equal(t, SQLiteStore, cfg.Store.Kind)
			require.Equal(t, "/tmp/override.db", cfg.Store.SQLite.Path)
			require.Equal(t, []string{"localhost:9092"}, cfg.Changefeed.Brokers)
			require.Equal(t, "lists", cfg.Changefeed.Topic)
		})
	})

	t.Run("will return an error", func(t *testing.T) {
		t.Run("if TODO_S3_SECURE is not a bool", func(t *testing.T) {
			t.Setenv("TODO_CONFIG_FILE", "")
			t.Setenv("TODO_S3_SECURE", "maybe")

			_, err := config.Read(context.Background(), ConfigFromEnv())
			require.NotNil(t, err)
		})

		t.Run("if the config file does not exist", func(t *testing.T) {
			t.Setenv("TODO_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Read(context.Background(), ConfigFromEnv())
			require.ErrorIs(t, err, os.ErrNotExist)
		})
	})
}

func TestOpenStore(t *testing.T) {
	t.Run("will return an UnknownStoreError", func(t *testing.T) {
		t.Run("if the store kind is not supported", func(t *testing.T) {
			_, err := OpenStore(context.Background(), Config{
				Store: StoreConfig{Kind: "redis"},
			}, &app.HookRegistry{})

			var uerr UnknownStoreError
			require.ErrorAs(t, err, &uerr)
			require.Equal(t, StoreKind("redis"), uerr.Kind)
		})
	})

	t.Run("will log the opened store kind", func(t *testing.T) {
		t.Run("if the store opens", func(t *testing.T) {
			var buf bytes.Buffer
			sdk, err := config.Read[otel.SDK](context.Background(), otel.Config{
				Fallback: config.ReaderOf[slog.Handler](slog.NewJSONHandler(&buf, nil)),
			})
			require.Nil(t, err)

			prev := global.GetLoggerProvider()
			global.SetLoggerProvider(sdk.LoggerProvider)
			t.Cleanup(func() {
				global.SetLoggerProvider(prev)
			})

			_, err = OpenStore(context.Background(), Config{
				Store: StoreConfig{Kind: MemoryStore},
			}, &app.HookRegistry{})
			require.Nil(t, err)

			var opened map[string]any
			dec := json.NewDecoder(&buf)
			for dec.More() {
				var line map[string]any
				require.Nil(t, dec.Decode(&line))
				if line["msg"] == "opened list store" {
					opened = line
				}
			}
			require.NotNil(t, opened)
			require.Equal(t, "memory", opened["kind"])
		})
	})

	t.Run("will close the sqlite store", func(t *testing.T) {
		t.Run("if the runtime returns", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "todo.db")
			builder := app.WithHooks(func(ctx context.Context, h *app.HookRegistry) (app.RuntimeFunc, error) {
				_, err := OpenStore(ctx, Config{
					Store: StoreConfig{
						Kind:   SQLiteStore,
						SQLite: SQLiteConfig{Path: path},
					},
				}, h)
				return func(context.Context) error { return nil }, err
			})

			rt, err := builder.Build(context.Background())
			require.Nil(t, err)
			require.Nil(t, rt.Run(context.Background()))
			require.FileExists(t, path)
		})
	})
}

func TestApi(t *testing.T) {
	t.Run("will serve the list endpoints", func(t *testing.T) {
		t.Run("if the memory store is configured", func(t *testing.T) {
			t.Setenv("TODO_CONFIG_FILE", "")
			t.Setenv("TODO_STORE", "memory")
			t.Setenv("KAFKA_BROKERS", "")

			h, err := Api(ConfigFromEnv(), &app.HookRegistry{}).Build(context.Background())
			require.Nil(t, err)

			srv := httptest.NewServer(h)
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/lists", "application/json", strings.NewReader(`{"title":"groceries","entries":[{"text":"milk"}]}`))
			require.Nil(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var created endpoint.CreateListResponse
			require.Nil(t, json.NewDecoder(resp.Body).Decode(&created))
			require.Equal(t, "0", created.ID)

			getResp, err := http.Get(srv.URL + "/lists/0")
			require.Nil(t, err)
			defer getResp.Body.Close()
			require.Equal(t, http.StatusOK, getResp.StatusCode)

			var got endpoint.GetListResponse
			require.Nil(t, json.NewDecoder(getResp.Body).Decode(&got))
			require.Equal(t, "groceries", got.Title)
			require.Equal(t, []todolist.Entry{{Text: "milk"}}, got.Entries)

			req, err := http.NewRequest(http.MethodPut, srv.URL+"/lists/0", strings.NewReader(`{"title":"chores","entries":[{"done":true,"text":"dishes"}]}`))
			require.Nil(t, err)
			req.Header.Set("Content-Type", "application/json")
			putResp, err := http.DefaultClient.Do(req)
			require.Nil(t, err)
			defer putResp.Body.Close()
			require.Equal(t, http.StatusOK, putResp.StatusCode)

			req, err = http.NewRequest(http.MethodDelete, srv.URL+"/lists/0", nil)
			require.Nil(t, err)
			delResp, err := http.DefaultClient.Do(req)
			require.Nil(t, err)
			defer delResp.Body.Close()
			require.Equal(t, http.StatusOK, delResp.StatusCode)

			goneResp, err := http.Get(srv.URL + "/lists/0")
			require.Nil(t, err)
			defer goneResp.Body.Close()
			require.Equal(t, http.StatusNotFound, goneResp.StatusCode)

			readyResp, err := http.Get(srv.URL + "/health/readiness")
			require.Nil(t, err)
			defer readyResp.Body.Close()
			require.Equal(t, http.StatusOK, readyResp.StatusCode)
		})
	})

	t.Run("will fail to build", func(t *testing.T) {
		t.Run("if the store kind is unknown", func(t *testing.T) {
			t.Setenv("TODO_CONFIG_FILE", "")
			t.Setenv("TODO_STORE", "redis")

			_, err := Api(ConfigFromEnv(), &app.HookRegistry{}).Build(context.Background())
			var uerr UnknownStoreError
			require.ErrorAs(t, err, &uerr)
		})
	})
}
