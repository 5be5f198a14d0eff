package storage

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fridadocs/docflow/pkg/metrics"
)

// Backend persists raw upload bytes under a unique key. Implementations must
// tolerate Remove being called for keys that no longer exist.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	Type() string
}

// Artifact is an ownership-scoped handle to stored bytes. It belongs to the
// job that acquired it until released.
type Artifact struct {
	key      string
	size     int64
	backend  Backend
	released atomic.Bool
}

func (a *Artifact) Key() string {
	return a.key
}

func (a *Artifact) Size() int64 {
	return a.size
}

// Open returns a reader over the stored bytes.
func (a *Artifact) Open(ctx context.Context) (io.ReadCloser, error) {
	if a.released.Load() {
		return nil, errors.New("artifact already released")
	}
	return a.backend.Open(ctx, a.key)
}

// Store hands out uniquely named artifacts and guarantees idempotent release.
type Store struct {
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Acquire writes data to a fresh, uniquely named location and transfers
// ownership of the resulting artifact to the caller.
func (s *Store) Acquire(ctx context.Context, data []byte, filename, contentType string) (*Artifact, error) {
	key := uuid.New().String() + filepath.Ext(filename)
	size := int64(len(data))

	if err := s.backend.Put(ctx, key, bytes.NewReader(data), size, contentType); err != nil {
		return nil, errors.Wrapf(err, "storing artifact %s", key)
	}

	metrics.AddArtifactBytesMetric(size)
	zap.S().Named("storage").Debugw("artifact acquired", "key", key, "bytes", size, "backend", s.backend.Type())

	return &Artifact{key: key, size: size, backend: s.backend}, nil
}

// Release deletes the underlying bytes. Releasing an already-released
// artifact is a no-op: cleanup paths run both on success and on failure
// and must not crash on double-cleanup.
func (s *Store) Release(ctx context.Context, a *Artifact) error {
	if a == nil {
		return nil
	}
	if !a.released.CompareAndSwap(false, true) {
		return nil
	}
	if err := a.backend.Remove(ctx, a.key); err != nil {
		zap.S().Named("storage").Warnw("artifact release failed", "key", a.key, "error", err)
		return errors.Wrapf(err, "releasing artifact %s", a.key)
	}
	zap.S().Named("storage").Debugw("artifact released", "key", a.key)
	return nil
}
