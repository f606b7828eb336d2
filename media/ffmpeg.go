package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/process"
	"github.com/kbukum/podscribe/timeline"
)

// Info describes a probed audio file.
type Info struct {
	Duration  float64
	SizeBytes int64
	Codec     string
}

// FFmpeg implements normalization, probing, slicing and silence detection.
type FFmpeg struct {
	runner process.Runner
	cfg    Config
	log    *logger.Logger
}

// New creates an FFmpeg adapter. cfg defaults are applied.
func New(runner process.Runner, cfg Config, log *logger.Logger) *FFmpeg {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &FFmpeg{runner: runner, cfg: cfg, log: log.WithComponent("media")}
}

// Available reports whether both binaries resolve on PATH.
func (f *FFmpeg) Available() bool {
	return process.Available(f.cfg.FFmpegPath) && process.Available(f.cfg.FFprobePath)
}

// Normalize converts src to mono PCM at the configured sample rate and
// writes it into dir. It returns the path of the normalized file.
func (f *FFmpeg) Normalize(ctx context.Context, src, dir string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", errors.InputError(src, err)
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(dir, base+"_normalized.wav")
	_, err := f.runner.Run(ctx, process.Command{
		Binary: f.cfg.FFmpegPath,
		Args: []string{
			"-i", src,
			"-ar", strconv.Itoa(f.cfg.SampleRate),
			"-ac", strconv.Itoa(f.cfg.Channels),
			"-c:a", f.cfg.Codec,
			"-y", "-hide_banner", "-loglevel", "error",
			dst,
		},
	})
	if err != nil {
		return "", err
	}
	f.log.Debug("normalized audio", logger.Fields("src", src, "dst", dst))
	return dst, nil
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecName string `json:"codec_name"`
	} `json:"streams"`
}

// Probe reads duration and size of path with ffprobe.
func (f *FFmpeg) Probe(ctx context.Context, path string) (*Info, error) {
	res, err := f.runner.Run(ctx, process.Command{
		Binary: f.cfg.FFprobePath,
		Args: []string{
			"-v", "error",
			"-select_streams", "a:0",
			"-show_entries", "stream=codec_name:format=duration,size",
			"-of", "json",
			path,
		},
	})
	if err != nil {
		return nil, err
	}

	var probe probeOutput
	if err := json.Unmarshal(res.Stdout, &probe); err != nil {
		return nil, errors.ToolInvocation(f.cfg.FFprobePath, "unparseable output", err)
	}
	duration, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return nil, errors.ToolInvocation(f.cfg.FFprobePath, fmt.Sprintf("invalid duration %q", probe.Format.Duration), err)
	}

	info := &Info{Duration: duration}
	if size, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil {
		info.SizeBytes = size
	} else if st, serr := os.Stat(path); serr == nil {
		info.SizeBytes = st.Size()
	}
	if len(probe.Streams) > 0 {
		info.Codec = probe.Streams[0].CodecName
	}
	return info, nil
}

// Slice writes [span.Start, span.End] of src to dst.
func (f *FFmpeg) Slice(ctx context.Context, src string, span timeline.Span, dst string) error {
	_, err := f.runner.Run(ctx, process.Command{
		Binary: f.cfg.FFmpegPath,
		Args: []string{
			"-i", src,
			"-ss", formatSeconds(span.Start),
			"-to", formatSeconds(span.End),
			"-c:a", f.cfg.Codec,
			"-y", "-hide_banner", "-loglevel", "error",
			dst,
		},
	})
	return err
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*([\d.]+)`)
)

// DetectSilence returns the quiet stretches of path. A silence still open
// at end of input is closed at duration.
func (f *FFmpeg) DetectSilence(ctx context.Context, path string, duration float64) ([]timeline.Span, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%.2f", f.cfg.SilenceNoiseDB, f.cfg.MinSilence.Seconds())
	res, err := f.runner.Run(ctx, process.Command{
		Binary: f.cfg.FFmpegPath,
		Args:   []string{"-hide_banner", "-nostats", "-i", path, "-af", filter, "-f", "null", "-"},
	})
	if err != nil {
		return nil, err
	}
	return parseSilence(string(res.Stderr), duration), nil
}

// parseSilence reads silencedetect lines such as
//
//	[silencedetect @ 0x...] silence_start: 42.123
//	[silencedetect @ 0x...] silence_end: 43.456 | silence_duration: 1.333
func parseSilence(output string, duration float64) []timeline.Span {
	var spans []timeline.Span
	var start float64
	open := false
	for _, line := range strings.Split(output, "\n") {
		if m := silenceStartRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				start, open = max(v, 0), true
			}
		}
		if m := silenceEndRe.FindStringSubmatch(line); m != nil && open {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				spans = append(spans, timeline.Span{Start: start, End: min(v, duration)})
				open = false
			}
		}
	}
	if open && duration > start {
		spans = append(spans, timeline.Span{Start: start, End: duration})
	}
	return spans
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
