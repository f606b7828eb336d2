package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/format"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/media"
	"github.com/kbukum/podscribe/timeline"
)

// stubAudio stands in for ffmpeg with a fixed probe result.
type stubAudio struct {
	info         media.Info
	normalizeErr error
}

func (a stubAudio) Normalize(_ context.Context, _, dir string) (string, error) {
	if a.normalizeErr != nil {
		return "", a.normalizeErr
	}
	dst := filepath.Join(dir, "normalized.wav")
	return dst, os.WriteFile(dst, []byte("pcm"), 0o600)
}

func (a stubAudio) Probe(context.Context, string) (*media.Info, error) {
	info := a.info
	return &info, nil
}

func (a stubAudio) DetectSilence(context.Context, string, float64) ([]timeline.Span, error) {
	return nil, nil
}

func (a stubAudio) Slice(_ context.Context, _ string, _ timeline.Span, dst string) error {
	return os.WriteFile(dst, []byte("pcm"), 0o600)
}

// newWhisper serves a faster-whisper sidecar that always hears the same words.
func newWhisper(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/transcribe":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"segments":[{"text":" hello there","start":0,"end":4}],"language":"en"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(t *testing.T, whisperURL string) *AppConfig {
	t.Helper()
	cfg := &AppConfig{}
	cfg.Transcription.Backend = "whisper"
	cfg.Transcription.Whisper.URL = whisperURL
	cfg.Storage.BasePath = t.TempDir()
	cfg.Pipeline.WorkDir = t.TempDir()
	cfg.ApplyDefaults()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return cfg
}

func TestAppConfigDefaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Pipeline.MinSilence = 3 * time.Second
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Name != serviceName {
		t.Errorf("Name = %q, want %q", cfg.Name, serviceName)
	}
	if cfg.Media.MinSilence != 3*time.Second {
		t.Errorf("Media.MinSilence = %v, want pipeline value 3s", cfg.Media.MinSilence)
	}
	if cfg.Media.SilenceNoiseDB != -30 {
		t.Errorf("Media.SilenceNoiseDB = %v, want -30", cfg.Media.SilenceNoiseDB)
	}
	if cfg.Transcription.Backend != "openai" {
		t.Errorf("Transcription.Backend = %q, want openai", cfg.Transcription.Backend)
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"unknown attribution", func(c *AppConfig) { c.Pipeline.Attribution = "loudest" }},
		{"auth without secret", func(c *AppConfig) { c.Auth.Enabled = true }},
		{"positive noise floor", func(c *AppConfig) { c.Media.SilenceNoiseDB = 6 }},
		{"bad environment", func(c *AppConfig) { c.Environment = "qa" }},
		{"port out of range", func(c *AppConfig) { c.Server.Port = 70000 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &AppConfig{}
			cfg.ApplyDefaults()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `name: podscribe-test
environment: staging
pipeline:
  max_chunk_bytes: 1048576
  attribution: max_overlap
  min_silence: 3s
transcription:
  backend: whisper
  language: en
server:
  port: 9090
  rate_limit:
    requests_per_minute: 30
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadAppConfig(path, "")
	if err != nil {
		t.Fatalf("loadAppConfig() error = %v", err)
	}
	if cfg.Name != "podscribe-test" || cfg.Environment != "staging" {
		t.Errorf("service = %q/%q", cfg.Name, cfg.Environment)
	}
	if cfg.Pipeline.MaxChunkBytes != 1<<20 || cfg.Pipeline.Attribution != "max_overlap" {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Media.MinSilence != 3*time.Second {
		t.Errorf("Media.MinSilence = %v, want 3s", cfg.Media.MinSilence)
	}
	if cfg.Transcription.Backend != "whisper" || cfg.Transcription.Language != "en" {
		t.Errorf("transcription = %+v", cfg.Transcription)
	}
	if cfg.Server.Port != 9090 || cfg.Server.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestBuildOrchestratorUnknownBackend(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"transcription", func(c *AppConfig) { c.Transcription.Backend = "parakeet" }},
		{"diarization", func(c *AppConfig) { c.Diarization.Backend = "nemo" }},
		{"acoustic", func(c *AppConfig) { c.Tagging.Acoustic.Backend = "yamnet" }},
		{"visual", func(c *AppConfig) { c.Tagging.Visual.Backend = "clip" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, "http://127.0.0.1:1")
			tc.mutate(cfg)
			if _, err := buildOrchestrator(cfg, stubAudio{}, nil, logger.Nop()); err == nil {
				t.Error("buildOrchestrator() = nil error, want unknown backend error")
			}
		})
	}
}

func TestTranscribe(t *testing.T) {
	ts := newWhisper(t)
	cfg := testConfig(t, ts.URL)
	source := filepath.Join(t.TempDir(), "episode.mp3")
	if err := os.WriteFile(source, []byte("id3"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("renders transcript", func(t *testing.T) {
		audio := stubAudio{info: media.Info{Duration: 4, SizeBytes: 128000, Codec: "pcm_s16le"}}
		orch, err := buildOrchestrator(cfg, audio, nil, logger.Nop())
		if err != nil {
			t.Fatalf("buildOrchestrator() error = %v", err)
		}
		var out bytes.Buffer
		if err := transcribe(context.Background(), orch, source, format.Text, &out, logger.Nop()); err != nil {
			t.Fatalf("transcribe() error = %v", err)
		}
		if !strings.Contains(out.String(), "hello there") {
			t.Errorf("output = %q, want the transcribed words", out.String())
		}
	})

	t.Run("stage failure", func(t *testing.T) {
		audio := stubAudio{normalizeErr: errors.ToolInvocation("ffmpeg", "moov atom not found", nil)}
		orch, err := buildOrchestrator(cfg, audio, nil, logger.Nop())
		if err != nil {
			t.Fatalf("buildOrchestrator() error = %v", err)
		}
		var out bytes.Buffer
		err = transcribe(context.Background(), orch, source, format.JSON, &out, logger.Nop())
		if !errors.IsCode(err, errors.ErrCodeToolInvocation) {
			t.Errorf("transcribe() error = %v, want %s", err, errors.ErrCodeToolInvocation)
		}
		if out.Len() != 0 {
			t.Errorf("output = %q, want nothing on failure", out.String())
		}
	})
}

func TestApplicationServes(t *testing.T) {
	ts := newWhisper(t)
	cfg := testConfig(t, ts.URL)
	cfg.Auth.Enabled = true
	cfg.Auth.Secret = "test-secret"

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, stubAudio{}, logger.Nop())
	if err != nil {
		t.Fatalf("newApplication() error = %v", err)
	}
	if err := app.start(ctx); err != nil {
		t.Fatalf("start() error = %v", err)
	}
	t.Cleanup(func() {
		if err := app.stop(context.Background()); err != nil {
			t.Errorf("stop() error = %v", err)
		}
	})
	base := "http://" + app.server.Addr()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(base + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var body struct {
			Status     string `json:"status"`
			Components []struct {
				Name string `json:"name"`
			} `json:"components"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Status != "healthy" {
			t.Errorf("health status = %q, want healthy", body.Status)
		}
		var names []string
		for _, c := range body.Components {
			names = append(names, c.Name)
		}
		if got := strings.Join(names, ","); got != "storage,pipeline,http-server" {
			t.Errorf("components = %s", got)
		}
	})

	t.Run("info", func(t *testing.T) {
		resp, err := http.Get(base + "/info")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("submit requires token", func(t *testing.T) {
		resp, err := http.Post(base+"/transcriptions", "text/plain", strings.NewReader("x"))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "tester",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatal(err)
		}
		req, _ := http.NewRequest(http.MethodGet, base+"/transcriptions/missing", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}
