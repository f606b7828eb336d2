package chunk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/timeline"
)

// Slicer writes the [span.Start, span.End] portion of src to dst as an
// independent playable file.
type Slicer interface {
	Slice(ctx context.Context, src string, span timeline.Span, dst string) error
}

// Materializer turns a chunk plan into files on disk.
type Materializer struct {
	slicer  Slicer
	workDir string
	log     *logger.Logger
}

// NewMaterializer creates a Materializer writing chunks below workDir
// (os.TempDir() when empty).
func NewMaterializer(slicer Slicer, workDir string, log *logger.Logger) *Materializer {
	if log == nil {
		log = logger.Nop()
	}
	return &Materializer{slicer: slicer, workDir: workDir, log: log.WithComponent("chunk")}
}

// Materialize returns one chunk per span in span order. A single span wraps
// source as-is without copying. Otherwise each span is sliced into its own
// temporary file; the first slicing failure releases what was already cut
// and aborts.
func (m *Materializer) Materialize(ctx context.Context, source string, spans []timeline.Span) (*Set, error) {
	if len(spans) == 0 {
		return nil, errors.InternalInvariant("chunk plan has no spans")
	}
	if len(spans) == 1 {
		return &Set{Chunks: []*Chunk{{Index: 0, Path: source, Span: spans[0]}}}, nil
	}

	dir, err := os.MkdirTemp(m.workDir, "chunks-")
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("create chunk directory: %w", err))
	}

	set := &Set{Chunks: make([]*Chunk, 0, len(spans)), dir: dir}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	ext := filepath.Ext(source)
	if ext == "" {
		ext = ".wav"
	}

	for i, span := range spans {
		dst := filepath.Join(dir, fmt.Sprintf("%s_chunk_%03d%s", base, i, ext))
		if err := m.slicer.Slice(ctx, source, span, dst); err != nil {
			if rerr := set.ReleaseAll(); rerr != nil {
				m.log.Warn("failed to clean up partial chunks", logger.ErrorFields("release", rerr))
			}
			return nil, errors.Wrap(err).WithDetail("chunk", i)
		}
		set.Chunks = append(set.Chunks, &Chunk{Index: i, Path: dst, Span: span, owned: true})
		m.log.Debug("chunk materialized", logger.Fields(
			logger.FieldChunk, i, "start", span.Start, "end", span.End,
		))
	}
	return set, nil
}
