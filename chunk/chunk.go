// Package chunk cuts a normalized recording into the spans produced by
// timeline.Plan and tracks the temporary files that result.
package chunk

import (
	stderrors "errors"
	"io/fs"
	"os"
	"sync"

	"github.com/kbukum/podscribe/timeline"
)

// Chunk is a playable slice of the recording. Span.Start is the offset added
// to every timestamp a transcription backend returns for it.
type Chunk struct {
	Index int
	Path  string
	Span  timeline.Span

	owned bool
	once  sync.Once
	err   error
}

// Owned reports whether Path is a temporary file belonging to the chunk.
func (c *Chunk) Owned() bool { return c.owned }

// Release removes the chunk's temporary file. It is a no-op for the
// unsplit source and safe to call more than once.
func (c *Chunk) Release() error {
	if !c.owned {
		return nil
	}
	c.once.Do(func() {
		if err := os.Remove(c.Path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			c.err = err
		}
	})
	return c.err
}

// Set is the ordered result of one Materialize call.
type Set struct {
	Chunks []*Chunk
	dir    string
}

// Len returns the number of chunks.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Chunks)
}

// ReleaseAll releases every chunk and removes the scratch directory.
func (s *Set) ReleaseAll() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, c := range s.Chunks {
		if err := c.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.dir != "" {
		if err := os.RemoveAll(s.dir); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
