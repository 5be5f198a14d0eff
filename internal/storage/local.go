package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LocalBackend keeps artifacts as files under a single upload directory.
type LocalBackend struct {
	dir string
}

var _ Backend = (*LocalBackend)(nil)

func NewLocalBackend(dir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating upload directory %s", dir)
	}
	return &LocalBackend{dir: dir}, nil
}

func (b *LocalBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f, err := os.OpenFile(b.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(b.path(key))
		return err
	}
	return f.Close()
}

func (b *LocalBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(b.path(key))
}

func (b *LocalBackend) Remove(ctx context.Context, key string) error {
	err := os.Remove(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (b *LocalBackend) Type() string {
	return "local"
}

func (b *LocalBackend) path(key string) string {
	return filepath.Join(b.dir, filepath.Base(key))
}
