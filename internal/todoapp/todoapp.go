// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package todoapp wires the configured list store into the REST api.
package todoapp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5labs/todo"
	"github.com/z5labs/todo/app"
	"github.com/z5labs/todo/config"
	"github.com/z5labs/todo/endpoint"
	"github.com/z5labs/todo/health"
	"github.com/z5labs/todo/rest"
	"github.com/z5labs/todo/todolist"
	"github.com/z5labs/todo/todolist/changefeed"
	"github.com/z5labs/todo/todolist/instrumented"
	"github.com/z5labs/todo/todolist/memory"
	"github.com/z5labs/todo/todolist/objectstore"
	"github.com/z5labs/todo/todolist/postgres"
	"github.com/z5labs/todo/todolist/sqlite"
)

// Version is reported in the OpenAPI document.
var Version = "v0.0.0"

const readinessTimeout = 2 * time.Second

// Store is a [todolist.Store] which can report its own health.
type Store interface {
	todolist.Store
	health.Monitor
}

// Api builds the REST api over the store described by cfg. Every resource
// it opens gets a cleanup hook registered with hooks.
func Api(cfg config.Reader[Config], hooks *app.HookRegistry) app.Builder[http.Handler] {
	return app.BuilderFunc[http.Handler](func(ctx context.Context) (http.Handler, error) {
		c, err := config.Read(ctx, cfg)
		if err != nil {
			return nil, err
		}

		store, err := OpenStore(ctx, c, hooks)
		if err != nil {
			return nil, err
		}
		return NewApi(store), nil
	})
}

// NewApi registers every list endpoint against store.
func NewApi(store Store) *rest.Api {
	return rest.NewApi(
		"todo",
		Version,
		endpoint.Index(),
		endpoint.CreateList(store),
		endpoint.GetList(store),
		endpoint.UpdateList(store),
		endpoint.DeleteList(store),
		rest.Readiness(health.Timeout(readinessTimeout, store)),
	)
}

// OpenStore opens the backend selected by cfg, instruments it and, when
// brokers are configured, publishes its changes to Kafka.
func OpenStore(ctx context.Context, cfg Config, hooks *app.HookRegistry) (Store, error) {
	log := todo.Logger("github.com/z5labs/todo/internal/todoapp")

	backend, err := openBackend(ctx, cfg.Store, hooks)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "opened list store", slog.String("kind", string(cfg.Store.Kind)))

	var store Store
	store, err = instrumented.Wrap(backend)
	if err != nil {
		return nil, err
	}

	if len(cfg.Changefeed.Brokers) == 0 {
		return store, nil
	}

	client, err := changefeed.NewClient(cfg.Changefeed.Brokers)
	if err != nil {
		return nil, err
	}
	hooks.OnPostRun(func(ctx context.Context) error {
		client.Close()
		return nil
	})

	err = changefeed.EnsureTopic(
		ctx,
		client,
		cfg.Changefeed.Topic,
		cfg.Changefeed.Partitions,
		cfg.Changefeed.ReplicationFactor,
	)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "publishing list changes", slog.String("topic", cfg.Changefeed.Topic))

	return changefeed.Wrap(store, client, cfg.Changefeed.Topic), nil
}

func openBackend(ctx context.Context, cfg StoreConfig, hooks *app.HookRegistry) (Store, error) {
	switch cfg.Kind {
	case MemoryStore:
		return memory.New(), nil
	case SQLiteStore:
		s, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		hooks.OnPostRun(func(ctx context.Context) error {
			return s.Close()
		})
		return s, nil
	case PostgresStore:
		s, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		hooks.OnPostRun(func(ctx context.Context) error {
			s.Close()
			return nil
		})
		return s, nil
	case S3Store:
		mc, err := objectstore.NewClient(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey, cfg.S3.Secure)
		if err != nil {
			return nil, err
		}
		return objectstore.Open(ctx, mc, cfg.S3.Bucket)
	default:
		return nil, UnknownStoreError{Kind: cfg.Kind}
	}
}
