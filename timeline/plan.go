package timeline

import (
	"fmt"
	"math"

	"github.com/kbukum/podscribe/errors"
)

// Plan splits a recording of totalSize bytes and totalDuration seconds into
// contiguous spans small enough to stay under maxChunkBytes each.
//
// Below the threshold the whole recording is one span. Above it the
// recording is cut into ceil(totalSize/maxChunkBytes) spans of equal
// duration, computed in whole milliseconds, with the last span clipped to
// totalDuration. Equal durations assume a constant bitrate, which holds for
// the PCM produced by normalization.
func Plan(totalSize int64, totalDuration float64, maxChunkBytes int64) ([]Span, error) {
	switch {
	case math.IsNaN(totalDuration) || math.IsInf(totalDuration, 0) || totalDuration <= 0:
		return nil, errors.InvalidInput("total_duration", fmt.Sprintf("duration must be positive, got %v", totalDuration))
	case maxChunkBytes <= 0:
		return nil, errors.InvalidInput("max_chunk_bytes", fmt.Sprintf("max chunk bytes must be positive, got %d", maxChunkBytes))
	case totalSize < 0:
		return nil, errors.InvalidInput("total_size", fmt.Sprintf("size must not be negative, got %d", totalSize))
	}

	if totalSize <= maxChunkBytes {
		return []Span{{Start: 0, End: totalDuration}}, nil
	}

	numParts := (totalSize + maxChunkBytes - 1) / maxChunkBytes
	totalMs := int64(math.Round(totalDuration * 1000))
	chunkMs := (totalMs + numParts - 1) / numParts

	spans := make([]Span, 0, numParts)
	for i := int64(0); i < numParts; i++ {
		startMs := i * chunkMs
		endMs := min((i+1)*chunkMs, totalMs)
		if endMs <= startMs {
			return nil, errors.InternalInvariant(fmt.Sprintf(
				"chunk %d of %d is empty (%d ms split into %d ms parts)", i, numParts, totalMs, chunkMs))
		}
		spans = append(spans, Span{Start: msToSeconds(startMs), End: msToSeconds(endMs)})
	}
	spans[len(spans)-1].End = totalDuration

	if err := CheckTiling(spans, totalDuration); err != nil {
		return nil, err
	}
	return spans, nil
}

// CheckTiling verifies that spans are ordered, gapless, non-overlapping and
// cover exactly [0, total].
func CheckTiling(spans []Span, total float64) error {
	if len(spans) == 0 {
		return errors.InternalInvariant("empty chunk plan")
	}
	if spans[0].Start != 0 {
		return errors.InternalInvariant(fmt.Sprintf("chunk plan starts at %v", spans[0].Start))
	}
	for i, s := range spans {
		if s.End <= s.Start {
			return errors.InternalInvariant(fmt.Sprintf("chunk %d has inverted span [%v, %v]", i, s.Start, s.End))
		}
		if i > 0 && s.Start != spans[i-1].End {
			return errors.InternalInvariant(fmt.Sprintf("gap or overlap between chunk %d and %d", i-1, i))
		}
	}
	if last := spans[len(spans)-1].End; last != total {
		return errors.InternalInvariant(fmt.Sprintf("chunk plan ends at %v, want %v", last, total))
	}
	return nil
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}
