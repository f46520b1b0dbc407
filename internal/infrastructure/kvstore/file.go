package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/bnema/shelf/internal/application/port"
	domainurl "github.com/bnema/shelf/internal/domain/url"
)

const (
	fileStoreDirPerm  = 0o750
	fileStoreFilePerm = 0o600
)

// FileBackend stores one JSON file per key inside dir.
type FileBackend struct {
	fs  afero.Fs
	dir string
}

// NewFileBackend creates a backend rooted at dir on the given filesystem.
// Pass afero.NewOsFs() for real disk storage.
func NewFileBackend(fsys afero.Fs, dir string) *FileBackend {
	return &FileBackend{fs: fsys, dir: dir}
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, domainurl.SanitizeKeyForFilename(key)+".json")
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, port.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes atomically: temp file then rename.
func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	if err := b.fs.MkdirAll(b.dir, fileStoreDirPerm); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	finalPath := b.path(key)
	tempPath := finalPath + ".tmp"

	if err := afero.WriteFile(b.fs, tempPath, value, fileStoreFilePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := b.fs.Rename(tempPath, finalPath); err != nil {
		_ = b.fs.Remove(tempPath)
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	err := b.fs.Remove(b.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
