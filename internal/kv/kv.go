// Package kv provides durable byte-blob storage addressed by string keys.
// Every backend overwrites a key's full value on Put.
package kv

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"restotrack/shared/go/logging"
)

// ErrNotFound is returned by Get when nothing has been stored under the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is the contract every backend satisfies.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

type instrumented struct {
	next    Store
	backend string
	logger  zerolog.Logger
}

// Instrument logs every call made against next.
func Instrument(next Store, backend string, logger zerolog.Logger) Store {
	return &instrumented{next: next, backend: backend, logger: logger}
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	logErr := err
	if errors.Is(err, ErrNotFound) {
		logErr = nil
	}
	logging.StorageOp(logging.FromContext(ctx, s.logger), s.backend, "get", key, time.Since(start), logErr)
	return value, err
}

func (s *instrumented) Put(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Put(ctx, key, value)
	logging.StorageOp(logging.FromContext(ctx, s.logger), s.backend, "put", key, time.Since(start), err)
	return err
}

func (s *instrumented) Close() error {
	return s.next.Close()
}
