package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/transcription"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunk_001.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeVerboseJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.FormValue("response_format") != "verbose_json" || r.FormValue("model") != "whisper-1" {
			t.Errorf("unexpected form %v", r.MultipartForm.Value)
		}
		if got := r.MultipartForm.Value["timestamp_granularities[]"]; len(got) != 1 || got[0] != "segment" {
			t.Errorf("unexpected granularities %v", got)
		}
		_, hdr, err := r.FormFile("file")
		if err != nil || hdr.Filename != "chunk_001.wav" {
			t.Errorf("unexpected file upload: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"text": "Hi there.",
			"language": "english",
			"duration": 4.5,
			"segments": [{"id": 0, "start": 2.0, "end": 4.5, "text": " Hi there. "}]
		}`))
	}))
	defer srv.Close()

	p, err := NewProvider(transcription.Config{OpenAI: transcription.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudio(t)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Segments) != 1 || resp.Segments[0].Start != 2.0 || resp.Segments[0].End != 4.5 {
		t.Errorf("unexpected segments %+v", resp.Segments)
	}
	if resp.Duration != 4.5 || resp.Language != "english" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestTranscribeWithoutKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	p, err := NewProvider(transcription.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if p.IsAvailable(context.Background()) {
		t.Error("provider without key should be unavailable")
	}
	_, err = p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudio(t)})
	if !errors.IsCode(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestKeyFromEnvironment(t *testing.T) {
	t.Setenv(APIKeyEnv, "sk-env")
	p, _ := NewProvider(transcription.Config{})
	if !p.IsAvailable(context.Background()) {
		t.Error("expected key to be read from the environment")
	}
}

func TestTranscribeRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	p, _ := NewProvider(transcription.Config{OpenAI: transcription.OpenAIConfig{APIKey: "bad", BaseURL: srv.URL}})
	_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudio(t)})
	if !errors.IsCode(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}
