// Package local is a storage backend on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath, cfg.MaxFileSize)
	})
}

// Storage implements storage.Storage using the local filesystem.
type Storage struct {
	basePath string
	maxSize  int64
}

// NewStorage creates a local storage rooted at basePath. A maxSize of 0
// disables the upload size limit.
func NewStorage(basePath string, maxSize int64) (*Storage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create base directory: %w", err)
	}
	return &Storage{basePath: abs, maxSize: maxSize}, nil
}

// resolve maps a relative object path to a file under basePath.
func (s *Storage) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.InvalidInput("path", fmt.Sprintf("%q is outside the storage root", path))
	}
	return filepath.Join(s.basePath, clean), nil
}

// Upload writes data from reader to a local file. A partial file is removed
// when the write fails or exceeds the size limit.
func (s *Storage) Upload(_ context.Context, path string, reader io.Reader) (int64, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return 0, fmt.Errorf("storage: create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return 0, fmt.Errorf("storage: create file: %w", err)
	}

	src := reader
	if s.maxSize > 0 {
		src = io.LimitReader(reader, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = errors.InvalidInput("file", "exceeds maximum size of "+strconv.FormatInt(s.maxSize, 10)+" bytes")
	}
	if err != nil {
		_ = os.Remove(fullPath)
		if _, ok := errors.AsAppError(err); ok {
			return 0, err
		}
		return 0, fmt.Errorf("storage: write file: %w", err)
	}
	return n, nil
}

// Download returns a reader for the local file at the given path.
func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("file", path)
		}
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

// Delete removes a local file and any directories left empty up to the
// storage root. Returns nil if the file does not exist.
func (s *Storage) Delete(_ context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete file: %w", err)
	}
	for dir := filepath.Dir(fullPath); dir != s.basePath && strings.HasPrefix(dir, s.basePath); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

// Exists checks whether a local file exists.
func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
	return true, nil
}

// LocalPath returns the filesystem path of the object.
func (s *Storage) LocalPath(path string) (string, error) {
	return s.resolve(path)
}

var (
	_ storage.Storage     = (*Storage)(nil)
	_ storage.LocalPather = (*Storage)(nil)
)
