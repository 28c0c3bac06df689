// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package objectstore provides a [todolist.Store] persisted in an S3
// compatible bucket.
//
// Each list is stored as a JSON object under lists/<id>.json. The next id
// to allocate is persisted under meta/next_id so ids are never reused,
// even across restarts.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/z5labs/todo/todolist"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const counterKey = "meta/next_id"

// NewClient creates a MinIO client for an S3 compatible endpoint.
func NewClient(endpoint, accessKey, secretKey string, secure bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
}

// Store is a bucket backed [todolist.Store].
//
// A single process is expected to own the bucket. Operations are
// serialized by an in-process lock since object writes cannot express
// the check-then-write sequences atomically.
type Store struct {
	mc     *minio.Client
	bucket string

	// putObject writes one object, defaulting to write.
	putObject func(ctx context.Context, key string, b []byte) error

	mu   sync.Mutex
	next todolist.ID
}

var _ todolist.Store = (*Store)(nil)

// Open prepares bucket for use, creating it if necessary, and loads the
// persisted id counter.
func Open(ctx context.Context, mc *minio.Client, bucket string) (*Store, error) {
	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		err = mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	s := &Store{
		mc:     mc,
		bucket: bucket,
	}
	s.putObject = s.write

	b, err := s.read(ctx, counterKey)
	if isNoSuchKey(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read id counter: %w", err)
	}

	next, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse id counter: %w", err)
	}
	s.next = todolist.ID(next)
	return s, nil
}

// Healthy implements the health.Monitor interface.
func (s *Store) Healthy(ctx context.Context) (bool, error) {
	return s.mc.BucketExists(ctx, s.bucket)
}

// Create implements the [todolist.Store] interface.
func (s *Store) Create(ctx context.Context, l todolist.List) (todolist.ID, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return 0, fmt.Errorf("failed to encode todo list: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	if id == todolist.MaxID {
		return 0, todolist.ErrExhausted
	}

	// The counter is persisted before the list so a crash between the two
	// writes can never hand out id twice.
	err = s.putObject(ctx, counterKey, []byte((id + 1).String()))
	if err != nil {
		return 0, fmt.Errorf("failed to advance id counter: %w", err)
	}
	s.next = id + 1

	err = s.putObject(ctx, objectKey(id), b)
	if err == nil {
		return id, nil
	}

	// Give id back so a failed create leaves no gap. If the counter cannot
	// be restored the id stays burned.
	rerr := s.putObject(ctx, counterKey, []byte(id.String()))
	if rerr != nil {
		return 0, fmt.Errorf("failed to write todo list: %w", errors.Join(err, rerr))
	}
	s.next = id
	return 0, fmt.Errorf("failed to write todo list: %w", err)
}

// Get implements the [todolist.Store] interface.
func (s *Store) Get(ctx context.Context, id todolist.ID) (todolist.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.read(ctx, objectKey(id))
	if isNoSuchKey(err) {
		return todolist.List{}, todolist.NotFoundError{ID: id}
	}
	if err != nil {
		return todolist.List{}, fmt.Errorf("failed to read todo list: %w", err)
	}

	var l todolist.List
	err = json.Unmarshal(b, &l)
	if err != nil {
		return todolist.List{}, fmt.Errorf("failed to decode todo list: %w", err)
	}
	return l, nil
}

// Update implements the [todolist.Store] interface.
func (s *Store) Update(ctx context.Context, id todolist.ID, l todolist.List) error {
	b, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to encode todo list: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.exists(ctx, id)
	if err != nil {
		return err
	}

	err = s.putObject(ctx, objectKey(id), b)
	if err != nil {
		return fmt.Errorf("failed to write todo list: %w", err)
	}
	return nil
}

// Delete implements the [todolist.Store] interface.
func (s *Store) Delete(ctx context.Context, id todolist.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.exists(ctx, id)
	if err != nil {
		return err
	}

	err = s.mc.RemoveObject(ctx, s.bucket, objectKey(id), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove todo list: %w", err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, id todolist.ID) error {
	_, err := s.mc.StatObject(ctx, s.bucket, objectKey(id), minio.StatObjectOptions{})
	if isNoSuchKey(err) {
		return todolist.NotFoundError{ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to stat todo list: %w", err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, key string) (b []byte, err error) {
	obj, err := s.mc.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		cerr := obj.Close()
		if cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return io.ReadAll(obj)
}

func (s *Store) write(ctx context.Context, key string, b []byte) error {
	_, err := s.mc.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(b),
		int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	return err
}

func objectKey(id todolist.ID) string {
	return "lists/" + id.String() + ".json"
}

func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
