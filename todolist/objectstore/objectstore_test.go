//go:build testcontainers

// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package objectstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/z5labs/todo/todolist"
	"github.com/z5labs/todo/todolist/storetest"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupMinIOContainer starts a MinIO container and returns a client for it.
func setupMinIOContainer(t *testing.T) *minio.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "docker.io/minio/minio:latest",
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").
			WithPort("9000/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	minioContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start minio container")
	t.Cleanup(func() {
		if err := minioContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate minio container: %v", err)
		}
	})

	endpoint, err := minioContainer.PortEndpoint(ctx, "9000/tcp", "")
	require.NoError(t, err)

	mc, err := NewClient(endpoint, "minioadmin", "minioadmin", false)
	require.NoError(t, err)
	return mc
}

func TestStore(t *testing.T) {
	mc := setupMinIOContainer(t)

	var buckets int
	storetest.Run(t, func(t *testing.T) todolist.Store {
		buckets++

		s, err := Open(context.Background(), mc, fmt.Sprintf("todo-%d", buckets))
		require.NoError(t, err)
		return s
	})

	t.Run("will resume the id counter when reopened", func(t *testing.T) {
		ctx := context.Background()

		s, err := Open(ctx, mc, "todo-reopen")
		require.NoError(t, err)

		id, err := s.Create(ctx, todolist.List{Title: "first"})
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, id))

		s, err = Open(ctx, mc, "todo-reopen")
		require.NoError(t, err)

		next, err := s.Create(ctx, todolist.List{Title: "second"})
		require.NoError(t, err)
		require.Equal(t, id+1, next)
	})

	t.Run("will return ErrExhausted if the counter is at the max id", func(t *testing.T) {
		ctx := context.Background()

		s, err := Open(ctx, mc, "todo-exhausted")
		require.NoError(t, err)
		s.next = todolist.MaxID

		_, err = s.Create(ctx, todolist.List{Title: "overflow"})
		require.ErrorIs(t, err, todolist.ErrExhausted)
	})
}
