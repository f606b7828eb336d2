package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Fetch makes the object at path available as a local file. Backends that
// implement LocalPather are used in place; otherwise the object is copied
// into dir. The returned cleanup removes any copy and is always non-nil.
func Fetch(ctx context.Context, s Storage, path, dir string) (string, func(), error) {
	noop := func() {}
	if lp, ok := s.(LocalPather); ok {
		local, err := lp.LocalPath(path)
		return local, noop, err
	}

	rc, err := s.Download(ctx, path)
	if err != nil {
		return "", noop, err
	}
	defer rc.Close() //nolint:errcheck // read side

	f, err := os.CreateTemp(dir, "fetch-*"+filepath.Ext(path))
	if err != nil {
		return "", noop, fmt.Errorf("storage: create local copy: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := io.Copy(f, rc); err != nil {
		_ = f.Close()
		cleanup()
		return "", noop, fmt.Errorf("storage: copy %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("storage: close local copy: %w", err)
	}
	return f.Name(), cleanup, nil
}
