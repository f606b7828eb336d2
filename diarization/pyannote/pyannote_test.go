package pyannote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kbukum/podscribe/diarization"
	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/timeline"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ep.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDiarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/diarize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got := r.FormValue("max_speakers"); got != "3" {
			t.Errorf("max_speakers = %q", got)
		}
		if got := r.FormValue("num_speakers"); got != "" {
			t.Errorf("num_speakers should be omitted, got %q", got)
		}
		_, _ = w.Write([]byte(`{"segments":[
			{"speaker":"SPEAKER_00","start":0.5,"end":5.1},
			{"speaker":"SPEAKER_01","start":5.5,"end":10.2},
			{"speaker":"SPEAKER_00","start":12.0,"end":18.0}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider(diarization.Config{Pyannote: diarization.PyannoteConfig{URL: srv.URL}})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Diarize(context.Background(), diarization.Request{AudioPath: writeAudio(t), MaxSpeakers: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []timeline.Turn{{Start: 0.5, End: 5.1, SpeakerID: "SPEAKER_00"}, {Start: 5.5, End: 10.2, SpeakerID: "SPEAKER_01"}, {Start: 12.0, End: 18.0, SpeakerID: "SPEAKER_00"}}
	if !reflect.DeepEqual(resp.Turns, want) {
		t.Errorf("turns = %v", resp.Turns)
	}
	if resp.NumSpeakers != 2 {
		t.Errorf("expected 2 speakers, got %d", resp.NumSpeakers)
	}
}

func TestDiarizeUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, _ := NewProvider(diarization.Config{Pyannote: diarization.PyannoteConfig{URL: srv.URL}})
	if p.IsAvailable(context.Background()) {
		t.Error("expected sidecar to be unavailable")
	}
	_, err := p.Diarize(context.Background(), diarization.Request{AudioPath: writeAudio(t)})
	if !errors.IsCode(err, errors.ErrCodeExternalService) {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
}

func TestRegistryResolvesNone(t *testing.T) {
	reg := diarization.NewRegistry()
	reg.RegisterFactory(ProviderName, Factory)

	p, err := reg.Resolve(diarization.NoneName, diarization.Config{})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Diarize(context.Background(), diarization.Request{})
	if err != nil || len(resp.Turns) != 0 {
		t.Fatalf("expected no turns, got %v, %v", resp, err)
	}
	if names := reg.List(); !reflect.DeepEqual(names, []string{"none", "pyannote"}) {
		t.Errorf("unexpected backends %v", names)
	}
}
