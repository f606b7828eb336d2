package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/kbukum/podscribe/tagging"
	"github.com/kbukum/podscribe/timeline"
)

func TestTag(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var spans []timeline.Span
		if err := json.Unmarshal([]byte(r.FormValue("spans")), &spans); err != nil {
			t.Errorf("decode spans: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if len(spans) != 1 || spans[0].Start != 0 {
			t.Errorf("short spans should be filtered, got %v", spans)
		}
		_, _ = w.Write([]byte(`{"events":[
			{"start":0,"end":4,"label":"music","confidence":0.9},
			{"start":1,"end":2,"label":"applause","confidence":0.2}]}`))
	}))
	defer srv.Close()

	audio := filepath.Join(t.TempDir(), "ep.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := tagging.Config{Acoustic: tagging.AcousticConfig{
		MinDuration: 1,
		Classifier:  tagging.ClassifierConfig{URL: srv.URL, MinConfidence: 0.5},
	}}
	tagger, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	got, err := tagger.Tag(context.Background(), audio, []timeline.Span{{Start: 0, End: 4}, {Start: 9, End: 9.5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []timeline.Unit{timeline.Event(0, 4, "*music*")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	got, err = tagger.Tag(context.Background(), audio, []timeline.Span{{Start: 9, End: 9.5}})
	if err != nil || got != nil {
		t.Errorf("expected no events without eligible spans, got %v, %v", got, err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one sidecar call, got %d", calls.Load())
	}
}
