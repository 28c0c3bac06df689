// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package todoapp

import (
	"context"

	"github.com/z5labs/todo/config"
	"github.com/z5labs/todo/todolist/changefeed"
)

// StoreKind selects the backend which holds the lists.
type StoreKind string

const (
	MemoryStore   StoreKind = "memory"
	SQLiteStore   StoreKind = "sqlite"
	PostgresStore StoreKind = "postgres"
	S3Store       StoreKind = "s3"
)

// UnknownStoreError is returned when the configured store kind is not one
// of the supported backends.
type UnknownStoreError struct {
	Kind StoreKind
}

func (e UnknownStoreError) Error() string {
	return "unknown store kind: " + string(e.Kind)
}

// Config is the service configuration. It is read from the YAML file named
// by TODO_CONFIG_FILE, if any, and then overridden by environment variables.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Changefeed ChangefeedConfig `yaml:"changefeed"`
}

type StoreConfig struct {
	Kind     StoreKind      `yaml:"kind"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	S3       S3Config       `yaml:"s3"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// ChangefeedConfig enables publishing list changes to Kafka when Brokers
// is non-empty.
type ChangefeedConfig struct {
	Brokers           []string `yaml:"brokers"`
	Topic             string   `yaml:"topic"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
}

// ConfigFromEnv reads the [Config].
func ConfigFromEnv() config.Reader[Config] {
	file := config.UnmarshalYAML[Config](config.File(config.Env("TODO_CONFIG_FILE")))

	return config.ReaderFunc[Config](func(ctx context.Context) (config.Value[Config], error) {
		cfg, err := config.Read(ctx, config.Default(Config{}, file))
		if err != nil {
			return config.Value[Config]{}, err
		}

		err = override(ctx, &cfg.Store.Kind, config.Map(config.Env("TODO_STORE"), func(_ context.Context, s string) (StoreKind, error) {
			return StoreKind(s), nil
		}))
		if err != nil {
			return config.Value[Config]{}, err
		}
		overrides := []struct {
			dst *string
			r   config.Reader[string]
		}{
			{&cfg.Store.SQLite.Path, config.Env("TODO_SQLITE_PATH")},
			{&cfg.Store.Postgres.DSN, config.Env("TODO_POSTGRES_DSN")},
			{&cfg.Store.S3.Endpoint, config.Env("TODO_S3_ENDPOINT")},
			{&cfg.Store.S3.AccessKey, config.Env("TODO_S3_ACCESS_KEY")},
			{&cfg.Store.S3.SecretKey, config.Env("TODO_S3_SECRET_KEY")},
			{&cfg.Store.S3.Bucket, config.Env("TODO_S3_BUCKET")},
			{&cfg.Changefeed.Topic, changefeed.TopicFromEnv()},
		}
		for _, o := range overrides {
			err := override(ctx, o.dst, o.r)
			if err != nil {
				return config.Value[Config]{}, err
			}
		}

		err = override(ctx, &cfg.Store.S3.Secure, config.BoolFromString(config.Env("TODO_S3_SECURE")))
		if err != nil {
			return config.Value[Config]{}, err
		}
		err = override(ctx, &cfg.Changefeed.Brokers, changefeed.BrokersFromEnv())
		if err != nil {
			return config.Value[Config]{}, err
		}

		applyDefaults(&cfg)
		return config.ValueOf(cfg), nil
	})
}

func override[T any](ctx context.Context, dst *T, r config.Reader[T]) error {
	v, err := r.Read(ctx)
	if err != nil {
		return err
	}
	if x, ok := v.Value(); ok {
		*dst = x
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = MemoryStore
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = "todo.db"
	}
	if cfg.Store.S3.Bucket == "" {
		cfg.Store.S3.Bucket = "todo-lists"
	}
	if cfg.Changefeed.Topic == "" {
		cfg.Changefeed.Topic = "todo-list-events"
	}
	if cfg.Changefeed.Partitions <= 0 {
		cfg.Changefeed.Partitions = 1
	}
	if cfg.Changefeed.ReplicationFactor <= 0 {
		cfg.Changefeed.ReplicationFactor = 1
	}
}
